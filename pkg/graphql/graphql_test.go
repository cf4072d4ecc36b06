package graphql

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingSchema(t *testing.T) graphql.Schema {
	schema, err := NewSchema(graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"echo": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{"v": &graphql.ArgumentConfig{Type: graphql.String}},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Args["v"], nil
				},
			},
		},
	}))
	require.NoError(t, err)
	return schema
}

func TestHandlerExecutesQuery(t *testing.T) {
	h := Handler(pingSchema(t))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"query($v:String){ echo(v:$v) }","variables":{"v":"hi"}}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"echo":"hi"}}`, rec.Body.String())
}

func TestHandlerRejectsMissingQuery(t *testing.T) {
	h := Handler(pingSchema(t))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
