package dataapi_test

import (
	"context"
	"fmt"
	"net/http"

	"github.com/docuflow/dataapi/pkg/dataapi"
)

// Example_findOne demonstrates configuring a dispatcher and running a
// findOne operation through an injected transport.
func Example_findOne() {
	// Echo transport standing in for the remote service.
	transport := dataapi.TransportFunc(func(_ context.Context, url string, opts dataapi.RequestOptions) (*dataapi.Response, error) {
		fmt.Printf("POST %s\n", url)
		fmt.Printf("body: %s\n", opts.Body)
		return &dataapi.Response{
			StatusCode: http.StatusOK,
			Body:       []byte(`{"document":{"title":"Dune"}}`),
		}, nil
	})

	dispatcher, err := dataapi.NewDispatcher(dataapi.Config{
		BaseURL:    "https://data.example.com/api/v1/action",
		DataSource: "main-cluster",
		Database:   "library",
		APIKey:     "secret",
	}, dataapi.WithTransport[dataapi.Endpoint](transport))
	if err != nil {
		fmt.Println(err)
		return
	}

	// One request per collection, reused across calls.
	req := dataapi.ForCollection("books")
	req.SetEndpoint(dataapi.EndpointFindOne)
	req.SetQuery(dataapi.Query{"filter": map[string]interface{}{"title": "Dune"}})

	result, err := dispatcher.Dispatch(context.Background(), req)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("document: %v\n", result["document"])

	// Output:
	// POST https://data.example.com/api/v1/action/findOne
	// body: {"dataSource":"main-cluster","database":"library","collection":"books","filter":{"title":"Dune"}}
	// document: map[title:Dune]
}
