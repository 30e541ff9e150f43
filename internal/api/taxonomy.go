package api

import (
	"fmt"
	"strconv"
)

// GetTree returns the nested taxonomy tree for a scope.
func (c *Client) GetTree(scope string) ([]TreeNode, error) {
	data, err := c.get(buildQuery(taxonomyPrefix+"/tree", QueryParams{"scope": scope}))
	if err != nil {
		return nil, err
	}
	return decodeItems[TreeNode](data)
}

// GetNode returns one node with its root-to-node path.
func (c *Client) GetNode(scope string, id int) (*NodeDetail, error) {
	path := fmt.Sprintf("%s/nodes/%d", taxonomyPrefix, id)
	data, err := c.get(buildQuery(path, QueryParams{"scope": scope}))
	if err != nil {
		return nil, err
	}
	return decode[NodeDetail](data)
}

// ListCases returns a level-3 node's cases, optionally filtered by keyword.
func (c *Client) ListCases(scope string, nodeID int, keyword string) ([]Case, error) {
	path := fmt.Sprintf("%s/nodes/%d/cases", taxonomyPrefix, nodeID)
	data, err := c.get(buildQuery(path, QueryParams{"scope": scope, "keyword": keyword}))
	if err != nil {
		return nil, err
	}
	return decodeItems[Case](data)
}

// CreateNode inserts a node under parentID (nil for level 1).
func (c *Client) CreateNode(input CreateNodeInput) (*NodeDetail, error) {
	data, err := c.post(taxonomyPrefix+"/nodes", input)
	if err != nil {
		return nil, err
	}
	return decode[NodeDetail](data)
}

// UpdateNode edits a node's name and definition.
func (c *Client) UpdateNode(id int, input UpdateNodeInput) (*NodeDetail, error) {
	data, err := c.put(fmt.Sprintf("%s/nodes/%d", taxonomyPrefix, id), input)
	if err != nil {
		return nil, err
	}
	return decode[NodeDetail](data)
}

// DeleteNode removes a node together with its subtree and cases.
func (c *Client) DeleteNode(scope string, id int) error {
	path := fmt.Sprintf("%s/nodes/%d", taxonomyPrefix, id)
	_, err := c.del(buildQuery(path, QueryParams{"scope": scope}))
	return err
}

// CreateCase adds a case to a level-3 node.
func (c *Client) CreateCase(input CreateCaseInput) (*Case, error) {
	data, err := c.post(taxonomyPrefix+"/cases", input)
	if err != nil {
		return nil, err
	}
	return decode[Case](data)
}

// UpdateCase replaces a case's content.
func (c *Client) UpdateCase(id int, input UpdateCaseInput) (*Case, error) {
	data, err := c.put(taxonomyPrefix+"/cases/"+strconv.Itoa(id), input)
	if err != nil {
		return nil, err
	}
	return decode[Case](data)
}

// DeleteCase removes one case.
func (c *Client) DeleteCase(scope string, id int) error {
	path := taxonomyPrefix + "/cases/" + strconv.Itoa(id)
	_, err := c.del(buildQuery(path, QueryParams{"scope": scope}))
	return err
}
