// Command loadtest fires a steady rate of POST /0.1/analysis requests at
// a running API instance, adapted from the teacher's job-submission load
// generator to exercise the admission path and its queue-saturation
// behavior (spec.md §8 scenario 3).
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

func main() {
	url := "http://localhost:8080/0.1/analysis"

	payload := map[string]interface{}{
		"method_name": "Camera",
		"datasets": []map[string]interface{}{
			{
				"name": "demo",
				"type": "rnaseq_counts",
				"data": "\tS1\tS2\tS3\tS4\nGENE1\t10\t12\t40\t45\nGENE2\t5\t6\t30\t28\n",
				"design": map[string]interface{}{
					"samples":       []string{"S1", "S2", "S3", "S4"},
					"comparison":    map[string]string{"group1": "control", "group2": "treated"},
					"analysisGroup": []string{"control", "control", "treated", "treated"},
				},
			},
		},
	}

	jsonData, _ := json.Marshal(payload)

	totalRequests := 100
	ratePerSecond := 5

	ticker := time.NewTicker(time.Second / time.Duration(ratePerSecond))
	defer ticker.Stop()

	var wg sync.WaitGroup
	client := &http.Client{}

	for i := 1; i <= totalRequests; i++ {
		<-ticker.C // enforce rate limit

		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
			if err != nil {
				fmt.Printf("Request %d: error creating request: %v\n", n, err)
				return
			}

			req.Header.Set("Content-Type", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				fmt.Printf("Request %d: error sending request: %v\n", n, err)
				return
			}
			defer resp.Body.Close()

			bodyBytes, err := io.ReadAll(resp.Body)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Printf("Request %d -> Status: %d, content: %s\n", n, resp.StatusCode, string(bodyBytes))
		}(i)
	}

	wg.Wait()
	fmt.Println("All requests completed")
}
