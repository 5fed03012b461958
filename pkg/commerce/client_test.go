package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func graphqlServer(t *testing.T, handle func(req graphqlRequest) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(handle(req)))
	}))
}

func TestGetProducts(t *testing.T) {
	var gotVars map[string]any
	srv := graphqlServer(t, func(req graphqlRequest) string {
		gotVars = req.Variables
		return `{"data":{"products":{
			"pageInfo":{"hasNextPage":true,"endCursor":"YXJyYXk="},
			"nodes":[
				{"id":"cHJvZHVjdDo0Mg==","databaseId":42,"slug":"trail-runner","name":"Trail Runner","type":"VARIABLE","price":"R 899.00",
					"variations":{"nodes":[
						{"id":"dmFyOjE=","databaseId":101,"name":"Black / 8","stockStatus":"IN_STOCK",
							"attributes":{"nodes":[{"name":"pa_colour","value":"black"},{"name":"pa_size","value":"8"}]}}
					]}},
				{"id":"cHJvZHVjdDo0Mw==","databaseId":43,"slug":"court-classic","name":"Court Classic","type":"SIMPLE","price":"R 449.00","stockStatus":"IN_STOCK"}
			]}}}`
	})
	defer srv.Close()

	c := NewClient(Config{GraphQLURL: srv.URL})
	page, err := c.GetProducts(context.Background(), ProductsQuery{
		First:      100,
		OrderField: OrderFieldDate,
		Order:      SortDesc,
		Categories: []string{"sneakers"},
	})
	if err != nil {
		t.Fatalf("GetProducts failed: %v", err)
	}

	if gotVars["first"] != float64(100) || gotVars["field"] != "DATE" || gotVars["order"] != "DESC" {
		t.Errorf("variables = %v", gotVars)
	}
	if _, ok := gotVars["after"]; ok {
		t.Error("first page must not send an after cursor")
	}

	if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor != "YXJyYXk=" {
		t.Errorf("pageInfo = %+v", page.PageInfo)
	}
	if len(page.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(page.Nodes))
	}
	variable := page.Nodes[0]
	if variable.Type != "VARIABLE" || variable.DatabaseID != 42 {
		t.Errorf("variable node = %+v", variable)
	}
	if len(variable.Variations.Nodes) != 1 || variable.Variations.Nodes[0].Attributes.Nodes[0].Value != "black" {
		t.Errorf("variation parsing: %+v", variable.Variations.Nodes)
	}
}

func TestGetProductsGraphQLError(t *testing.T) {
	srv := graphqlServer(t, func(req graphqlRequest) string {
		return `{"data":null,"errors":[{"message":"Internal server error"}]}`
	})
	defer srv.Close()

	c := NewClient(Config{GraphQLURL: srv.URL})
	if _, err := c.GetProducts(context.Background(), ProductsQuery{First: 24}); err == nil {
		t.Fatal("expected error from graphql errors array")
	} else if !strings.Contains(err.Error(), "Internal server error") {
		t.Errorf("err = %v, want backend message surfaced", err)
	}
}

func TestGetCategoriesExcludesUncategorized(t *testing.T) {
	srv := graphqlServer(t, func(req graphqlRequest) string {
		return `{"data":{"productCategories":{"nodes":[
			{"id":"c1","name":"Sneakers","slug":"sneakers"},
			{"id":"c2","name":"Uncategorized","slug":"uncategorized"},
			{"id":"c3","name":"Boots","slug":"boots"}
		]}}}`
	})
	defer srv.Close()

	c := NewClient(Config{GraphQLURL: srv.URL})
	cats, err := c.GetCategories(context.Background())
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("categories = %d, want 2", len(cats))
	}
	for _, cat := range cats {
		if cat.Slug == "uncategorized" {
			t.Error("reserved slug not excluded")
		}
	}
}

func TestCreateOrderAuthAndDecode(t *testing.T) {
	var gotAuth bool
	var gotBody OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "ck_test" && pass == "cs_test"
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("invalid order body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":991,"status":"processing","total":"1348.50","currency":"ZAR"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RESTBaseURL: srv.URL, ConsumerKey: "ck_test", ConsumerSecret: "cs_test"})
	order, err := c.CreateOrder(context.Background(), &OrderRequest{
		PaymentMethod: "yoco",
		SetPaid:       true,
		LineItems:     []OrderLineItem{{ProductID: 42, Quantity: 2, Total: "899.00"}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if !gotAuth {
		t.Error("consumer key basic auth not sent")
	}
	if !gotBody.SetPaid || len(gotBody.LineItems) != 1 {
		t.Errorf("order body = %+v", gotBody)
	}
	if order.ID != 991 {
		t.Errorf("order id = %d, want 991", order.ID)
	}
}

func TestCreateOrderRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"rest_invalid_param"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{RESTBaseURL: srv.URL})
	if _, err := c.CreateOrder(context.Background(), &OrderRequest{}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}
