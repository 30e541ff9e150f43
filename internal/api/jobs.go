package api

import "fmt"

// TriggerScenarioSync pushes every active knowledge item of a scenario to the
// downstream knowledge base. The call blocks until the push finishes, so it
// runs on a SyncTimeout client.
func (c *Client) TriggerScenarioSync(scenarioID int) (*ScenarioSyncResult, error) {
	path := fmt.Sprintf("%s/%d/trigger-sync", scenarioPrefix, scenarioID)
	data, err := c.WithTimeout(SyncTimeout).post(path, nil)
	if err != nil {
		return nil, err
	}
	return decode[ScenarioSyncResult](data)
}

// TriggerAggregation starts conversation aggregation over a time window.
func (c *Client) TriggerAggregation(input AggregationInput) (*JobTriggerResponse, error) {
	return c.triggerJob("trigger-aggregation", input)
}

// TriggerExtraction starts FAQ extraction. A nil limit reads everything.
func (c *Client) TriggerExtraction(input ExtractionInput) (*JobTriggerResponse, error) {
	return c.triggerJob("trigger-extraction", input)
}

// TriggerCompareKBSync starts the knowledge-base comparison job.
func (c *Client) TriggerCompareKBSync() (*JobTriggerResponse, error) {
	return c.triggerJob("trigger-compare-kb-sync", struct{}{})
}

func (c *Client) triggerJob(name string, body any) (*JobTriggerResponse, error) {
	data, err := c.WithTimeout(JobTimeout).post(adminPrefix+"/"+name, body)
	if err != nil {
		return nil, err
	}
	return decode[JobTriggerResponse](data)
}
