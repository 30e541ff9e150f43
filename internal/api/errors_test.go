package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"  Case not found "}`, "Case not found"},
		{"validation list", `{"detail":[{"loc":["body","cases",0],"msg":"too long"},{"loc":["query","scope"],"msg":"invalid"}]}`, "body.cases.0: too long; query.scope: invalid"},
		{"error envelope", `{"error":{"code":"LEVEL_MISMATCH","message":"parent is level 3"}}`, "LEVEL_MISMATCH: parent is level 3"},
		{"code only", `{"error":{"code":"FORBIDDEN"}}`, "FORBIDDEN"},
		{"nested error", `{"detail":{"error":"scope not permitted"}}`, "scope not permitted"},
		{"message field", `{"message":"maintenance"}`, "maintenance"},
		{"detail wins", `{"detail":"first","message":"second"}`, "first"},
		{"null detail falls through", `{"detail":null,"message":"second"}`, "second"},
		{"unrecognised json", `{"status":"bad"}`, `HTTP 400: {"status":"bad"}`},
		{"plain text", "gateway timeout\n", "HTTP 400: gateway timeout"},
		{"empty body", "", "HTTP 400: "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorMessage(400, []byte(tc.body)))
		})
	}
}

func TestLabelled(t *testing.T) {
	assert.Equal(t, "a: b", labelled(" a ", "b"))
	assert.Equal(t, "b", labelled("", "b"))
	assert.Equal(t, "a", labelled("a", " "))
	assert.Empty(t, labelled("", ""))
}
