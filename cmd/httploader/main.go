package main

import (
	"bytes"
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

func randStringBytes(n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.IntN(len(letterBytes))]
	}
	return string(b)
}

// identifierOf extracts the identifier from a preview or raw URL.
func identifierOf(link string) string {
	link = strings.TrimSpace(link)
	parts := strings.Split(link, "/")
	id, _, _ := strings.Cut(parts[len(parts)-1], ".")
	return id
}

func main() {
	a := flag.String("a", "http://localhost:9515", "Server address")
	n := flag.Int("n", 20, "Iterations per stage")
	flag.Parse()
	address := *a
	iterations := *n

	const postURL = "/url?raw=1"
	const postPaste = "/paste?raw=1"
	const getRegular = "/"
	const getRaw = "/raw/"
	const getStats = "/stats/"
	const ping = "/ping"

	client := resty.New()
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	// Performing ping loading
	log.Println("Performing ping loading")
	for i := 0; i < iterations; i++ {
		_, err := client.R().Get(address + ping)
		if err != nil {
			log.Fatal(err)
		}
	}
	time.Sleep(1 * time.Second)

	// Performing postURL loading
	log.Println("Performing postURL loading")
	var ids []string
	for i := 0; i < iterations; i++ {
		res, err := client.R().SetBody(strings.NewReader("https://www." + randStringBytes(10) + ".com")).Post(address + postURL)
		if err != nil {
			log.Fatal(err)
		}
		if res.IsSuccess() {
			ids = append(ids, identifierOf(string(res.Body())))
		}
	}
	time.Sleep(1 * time.Second)

	// Performing postPaste loading
	log.Println("Performing postPaste loading")
	for i := 0; i < iterations; i++ {
		payload := bytes.Repeat([]byte(randStringBytes(16)+"\n"), 1+rand.IntN(64))
		res, err := client.R().SetBody(payload).Post(address + postPaste)
		if err != nil {
			log.Fatal(err)
		}
		if res.IsSuccess() {
			ids = append(ids, identifierOf(string(res.Body())))
		}
	}
	log.Println(ids)
	time.Sleep(1 * time.Second)

	// Performing getRegular, getRaw and getStats loading
	log.Println("Performing get loading")
	for _, id := range ids {
		for _, route := range []string{getRegular, getRaw, getStats} {
			res, err := client.R().Get(address + route + id)
			if err != nil {
				log.Fatal(err)
			}
			if res.IsError() {
				log.Println("Unexpected status", res.StatusCode(), route+id)
			}
		}
	}
}
