package api

// ValidateImport dry-runs a taxonomy file against a scope. Never writes.
func (c *Client) ValidateImport(scope, filename string, content []byte) (*ImportResult, error) {
	path := buildQuery(taxonomyPrefix+"/import/validate", QueryParams{"scope": scope})
	data, err := c.WithTimeout(ValidateTimeout).upload(path, filename, content)
	if err != nil {
		return nil, err
	}
	return decodeImportResult(data)
}

// ExecuteImport atomically replaces the scope's taxonomy with the file.
// ok=false means nothing was written.
func (c *Client) ExecuteImport(scope, filename string, content []byte) (*ImportResult, error) {
	path := buildQuery(taxonomyPrefix+"/import/execute", QueryParams{"scope": scope})
	data, err := c.WithTimeout(ImportTimeout).upload(path, filename, content)
	if err != nil {
		return nil, err
	}
	return decodeImportResult(data)
}

func decodeImportResult(data []byte) (*ImportResult, error) {
	res, err := decode[ImportResult](data)
	if err != nil {
		return nil, err
	}
	if res.Errors == nil {
		res.Errors = []ImportRowError{}
	}
	return res, nil
}
