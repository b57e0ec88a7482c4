package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"gitlab.com/dirk.krummacker/pcrm/internal/randomgen"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

var baseURL string

// Usage example on the command line:
// > go run main.go -mode=seed -contacts=50
// > go run main.go -mode=bench
func main() {
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "the address of the web service")
	mode := flag.String("mode", "seed", "seed fills the database with random contacts, bench measures request times")
	contacts := flag.Int("contacts", 50, "number of contacts to create in seed mode")
	seed := flag.Int64("seed", time.Now().UnixNano(), "seed of the random data")
	flag.Parse()

	gen := randomgen.New(*seed)
	switch *mode {
	case "seed":
		populate(gen, *contacts)
	case "bench":
		benchmark(gen)
	default:
		fmt.Println("unknown mode", *mode)
		os.Exit(2)
	}
}

// populate creates contacts with phones, pets, notes, reminders, occasions, gifts and tags, and
// relates some of them to each other.
func populate(gen *randomgen.Generator, count int) {
	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		id, _ := postContact(gen.Contact())
		ids = append(ids, id)
		for j := gen.Intn(3); j > 0; j-- {
			post(fmt.Sprintf("/contacts/%d/phones", id), gen.Phone())
		}
		if gen.Intn(5) == 0 {
			post(fmt.Sprintf("/contacts/%d/pets", id), api.Named{Name: gen.FirstName()})
		}
		for j := gen.Intn(6); j > 0; j-- {
			post(fmt.Sprintf("/contacts/%d/notes", id), api.Note{Text: gen.Note()})
		}
		for j := gen.Intn(3); j > 0; j-- {
			post(fmt.Sprintf("/contacts/%d/reminders", id), gen.Reminder(time.Now()))
		}
		for j := gen.Intn(4); j > 0; j-- {
			post(fmt.Sprintf("/contacts/%d/occasions", id), gen.Occasion())
		}
		for j := gen.Intn(5); j > 0; j-- {
			post(fmt.Sprintf("/contacts/%d/gifts", id), gen.Gift())
		}
		for j := 1 + gen.Intn(3); j > 0; j-- {
			post(fmt.Sprintf("/contacts/%d/tags", id), api.Tag{Name: gen.Tag()})
		}
	}
	relations := []string{"friend", "colleague", "sibling", "neighbor"}
	for i := 1; i < len(ids); i++ {
		if gen.Intn(3) == 0 {
			other := ids[gen.Intn(i)]
			post(fmt.Sprintf("/contacts/%d/relationships", ids[i]),
				api.Relationship{OtherId: other, Type: relations[gen.Intn(len(relations))]})
		}
	}
	fmt.Printf("Created %d contacts.\n", len(ids))
}

// benchmark prints the average time in microseconds of the contact requests for growing numbers
// of contacts.
func benchmark(gen *randomgen.Generator) {
	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET      NOTE    DELETE ")
	fmt.Println("-------------------------------------------------------------")
	sizes := []int{100, 500, 1000, 5000}
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]int64, 0, loops)
		var duration int64
		for i := 0; i < loops; i++ {
			id, d := postContact(gen.Contact())
			ids = append(ids, id)
			duration += d
		}
		fmt.Printf("%10d", duration/int64(loops*1000))
		callInLoop(gen, ids, func(id int64) int64 {
			return sendJSON(http.MethodPut, fmt.Sprintf("/contacts/%d", id), gen.Contact())
		})
		callInLoop(gen, ids, func(id int64) int64 {
			_, d := sendRequest(http.MethodGet, fmt.Sprintf("/contacts/%d", id), nil)
			return d
		})
		callInLoop(gen, ids, func(id int64) int64 {
			return sendJSON(http.MethodPost, fmt.Sprintf("/contacts/%d/notes", id), api.Note{Text: gen.Note()})
		})
		callInLoop(gen, ids, func(id int64) int64 {
			_, d := sendRequest(http.MethodDelete, fmt.Sprintf("/contacts/%d", id), nil)
			return d
		})
		fmt.Println()
	}
}

func callInLoop(gen *randomgen.Generator, ids []int64, f func(id int64) int64) {
	shuffled := make([]int64, len(ids))
	copy(shuffled, ids)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := gen.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func postContact(contact api.Contact) (int64, int64) {
	resBody, duration := sendRequest(http.MethodPost, "/contacts", marshal(contact))
	var created api.Contact
	if err := json.Unmarshal(resBody, &created); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return created.Id, duration
}

func post(path string, document interface{}) {
	sendJSON(http.MethodPost, path, document)
}

func sendJSON(method, path string, document interface{}) int64 {
	_, duration := sendRequest(method, path, marshal(document))
	return duration
}

func marshal(document interface{}) io.Reader {
	body, err := json.Marshal(document)
	if err != nil {
		panic(err)
	}
	return bytes.NewReader(body)
}

func sendRequest(method string, path string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	if res.StatusCode >= http.StatusBadRequest {
		fmt.Printf("\n%s %s: %s %s\n", method, path, res.Status, resBody)
	}
	return resBody, after - before
}
