package client_test

import (
	"encoding/json"
	"fmt"

	"github.com/daniacca/colony/internal/colony"
	"github.com/daniacca/colony/pkg/client"
)

func ExampleWebhookBuilder() {
	hook := client.NewWebhook("murders", "http://localhost:9000/hook").
		Only(colony.EventMurdered)

	data, _ := json.Marshal(hook.Build())
	fmt.Println(string(data))

	// Example: register on a running server (commented out for test)
	// c := client.New("http://localhost:8080")
	// if err := c.RegisterWebhook(context.Background(), hook); err != nil {
	// 	log.Fatal(err)
	// }

	// Output:
	// {"type":"webhook","id":"murders","config":{"kinds":["murdered"],"url":"http://localhost:9000/hook"}}
}
