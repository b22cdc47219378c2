// Command seed-matches pushes synthetic match results into a running
// service, for smoke tests and load checks without a TBA key.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"
)

type pushMatch struct {
	Teams1 []string `json:"teams1"`
	Teams2 []string `json:"teams2"`
	Score1 *int     `json:"score1"`
	Score2 *int     `json:"score2"`
}

func main() {
	var (
		addr    = flag.String("addr", "http://127.0.0.1:5000", "service base URL")
		teams   = flag.Int("teams", 60, "number of synthetic teams")
		matches = flag.Int("matches", 500, "number of matches to push")
		batch   = flag.Int("batch", 50, "matches per request")
		seed    = flag.Int64("seed", 1, "PRNG seed, for reproducible runs")
	)
	flag.Parse()

	if *teams < 6 {
		fmt.Fprintln(os.Stderr, "need at least 6 teams for two alliances of three")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	keys := make([]string, *teams)
	for i := range keys {
		keys[i] = fmt.Sprintf("frc%d", 1000+i)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	pushed := 0
	for pushed < *matches {
		n := *batch
		if rest := *matches - pushed; rest < n {
			n = rest
		}
		payload := make([]pushMatch, 0, n)
		for i := 0; i < n; i++ {
			payload = append(payload, randomMatch(rng, keys))
		}
		if err := post(client, *addr+"/push_results", payload); err != nil {
			fmt.Fprintln(os.Stderr, "push failed:", err)
			os.Exit(1)
		}
		pushed += n
	}

	fmt.Printf("pushed %d matches across %d teams\n", pushed, *teams)
}

// randomMatch picks six distinct teams and scores both alliances; roughly
// one match in twenty ends in a tie.
func randomMatch(rng *rand.Rand, keys []string) pushMatch {
	perm := rng.Perm(len(keys))
	red := []string{keys[perm[0]], keys[perm[1]], keys[perm[2]]}
	blue := []string{keys[perm[3]], keys[perm[4]], keys[perm[5]]}

	s1 := rng.Intn(120)
	s2 := rng.Intn(120)
	if rng.Intn(20) == 0 {
		s2 = s1
	}
	return pushMatch{Teams1: red, Teams2: blue, Score1: &s1, Score2: &s2}
}

func post(client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
