package api

import "fmt"

// --- Taxonomy suggestions ---

// ListPendingTaxonomy returns machine-suggested taxonomy entries for a scope.
func (c *Client) ListPendingTaxonomy(scope string) ([]TaxonomyReviewItem, error) {
	data, err := c.get(buildQuery(taxReviewPrefix+"/pending", QueryParams{"scope": scope}))
	if err != nil {
		return nil, err
	}
	return decodeItems[TaxonomyReviewItem](data)
}

// AcceptTaxonomyItem writes the (possibly edited) suggestion into the tree.
func (c *Client) AcceptTaxonomyItem(id int, input AcceptTaxonomyInput) (*MessageResponse, error) {
	data, err := c.post(fmt.Sprintf("%s/items/%d/accept", taxReviewPrefix, id), input)
	if err != nil {
		return nil, err
	}
	return decode[MessageResponse](data)
}

// DiscardTaxonomyItem drops a suggestion.
func (c *Client) DiscardTaxonomyItem(scope string, id int) (*MessageResponse, error) {
	path := fmt.Sprintf("%s/items/%d/discard", taxReviewPrefix, id)
	data, err := c.post(buildQuery(path, QueryParams{"scope": scope}), nil)
	if err != nil {
		return nil, err
	}
	return decode[MessageResponse](data)
}

// --- Pending FAQs ---

// ListPendingFAQs returns one page of the pending FAQ queue.
func (c *Client) ListPendingFAQs(page, pageSize int, keyword string) (*PendingFAQPage, error) {
	params := QueryParams{"keyword": keyword}
	if page > 0 {
		params["page"] = fmt.Sprintf("%d", page)
	}
	if pageSize > 0 {
		params["pageSize"] = fmt.Sprintf("%d", pageSize)
	}
	data, err := c.get(buildQuery(reviewPrefix+"/pending-faqs", params))
	if err != nil {
		return nil, err
	}
	res, err := decode[PendingFAQPage](data)
	if err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []PendingFAQ{}
	}
	return res, nil
}

// AcceptPendingFAQ creates a knowledge item from a pending FAQ.
func (c *Client) AcceptPendingFAQ(input CreateKnowledgeItemInput) (*CreatedKnowledgeItem, error) {
	data, err := c.post(reviewPrefix+"/knowledge-items", input)
	if err != nil {
		return nil, err
	}
	return decode[CreatedKnowledgeItem](data)
}

// DiscardPendingFAQ drops a pending FAQ.
func (c *Client) DiscardPendingFAQ(id int) error {
	_, err := c.del(fmt.Sprintf("%s/pending-faqs/%d", reviewPrefix, id))
	return err
}

// BulkCreateKnowledgeItems accepts several pending FAQs in one transaction
// and returns how many were created.
func (c *Client) BulkCreateKnowledgeItems(items []CreateKnowledgeItemInput) (int, error) {
	data, err := c.post(bulkPrefix+"/knowledge-items/bulk-create", bulkCreateRequest{Items: items})
	if err != nil {
		return 0, err
	}
	res, err := decode[bulkCreateResponse](data)
	if err != nil {
		return 0, err
	}
	return res.CreatedCount, nil
}

// BulkDiscardPendingFAQs discards several pending FAQs in one transaction
// and returns how many were discarded.
func (c *Client) BulkDiscardPendingFAQs(ids []int) (int, error) {
	data, err := c.post(bulkPrefix+"/pending-faqs/bulk-discard", bulkDiscardRequest{PendingFAQIDs: ids})
	if err != nil {
		return 0, err
	}
	res, err := decode[bulkDiscardResponse](data)
	if err != nil {
		return 0, err
	}
	return res.DiscardedCount, nil
}
