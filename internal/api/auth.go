package api

// Login exchanges credentials for a bearer token. A 401 here means bad
// credentials, not an expired session.
func (c *Client) Login(username, password string) (*LoginResponse, error) {
	data, err := c.post(loginPath, LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	return decode[LoginResponse](data)
}
