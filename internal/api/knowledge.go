package api

import (
	"fmt"
	"strconv"
)

// ListKnowledgeItems returns one page of knowledge items.
func (c *Client) ListKnowledgeItems(q KnowledgeQuery) (*KnowledgePage, error) {
	params := QueryParams{
		"status":  q.Status,
		"keyword": q.Keyword,
	}
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.PageSize > 0 {
		params["pageSize"] = strconv.Itoa(q.PageSize)
	}
	data, err := c.get(buildQuery(knowledgePrefix, params))
	if err != nil {
		return nil, err
	}
	res, err := decode[KnowledgePage](data)
	if err != nil {
		return nil, err
	}
	if res.Items == nil {
		res.Items = []KnowledgeItem{}
	}
	return res, nil
}

// CountKnowledgeItems returns the total for a status without fetching rows.
func (c *Client) CountKnowledgeItems(status string) (int, error) {
	page, err := c.ListKnowledgeItems(KnowledgeQuery{Status: status, Page: 1, PageSize: 1})
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

// GetKnowledgeItem returns a single knowledge item.
func (c *Client) GetKnowledgeItem(id int) (*KnowledgeItem, error) {
	data, err := c.get(fmt.Sprintf("%s/%d", knowledgePrefix, id))
	if err != nil {
		return nil, err
	}
	return decode[KnowledgeItem](data)
}

// UpdateKnowledgeItem changes question, answer or status.
func (c *Client) UpdateKnowledgeItem(id int, input UpdateKnowledgeInput) (*KnowledgeItem, error) {
	data, err := c.put(fmt.Sprintf("%s/%d", knowledgePrefix, id), input)
	if err != nil {
		return nil, err
	}
	return decode[KnowledgeItem](data)
}
