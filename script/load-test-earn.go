package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EarnPayload mirrors the body of POST /v1/me/earn
type EarnPayload struct {
	Type             string `json:"type"`
	IdempotencyToken string `json:"idempotencyToken,omitempty"`
	ModuleID         string `json:"moduleId,omitempty"`
	QuizScore        int    `json:"quizScore,omitempty"`
	AdUnitID         string `json:"adUnitId,omitempty"`
	AdNetwork        string `json:"adNetwork,omitempty"`
}

// TestResult contains metrics for a single request
type TestResult struct {
	Scenario     string
	StatusCode   int
	ResponseTime time.Duration
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests     int
	Credited          int
	Rejected          int // 4xx answers from the economy rules
	Failed            int // transport errors and 5xx
	TotalTime         time.Duration
	MinResponseTime   time.Duration
	MaxResponseTime   time.Duration
	TotalResponseTime time.Duration
	ResponseTimes     []time.Duration
	StatusCounts      map[int]int
	ErrorCounts       map[string]int
	UserStats         map[uint64]int
	ScenarioStats     map[string]int
	Lock              sync.Mutex
}

// EarnScenario builds one earn payload per request
type EarnScenario struct {
	Name  string
	Build func(jobID int) EarnPayload
}

// replayToken is shared by every "Ad Replay" request so all but the first are duplicates
var replayToken = uuid.NewString()

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of requests to make")
	userIDsStr := flag.String("u", "1,2,3", "Comma-separated list of user IDs to distribute load across")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	deviceID := flag.String("device", "", "X-Device-ID header; empty sends none")
	createUsers := flag.Bool("create", true, "Create the users before the run (409 is ignored)")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	var userIDs []uint64
	for _, idStr := range strings.Split(*userIDsStr, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(idStr), 10, 64)
		if err == nil && id > 0 {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) == 0 {
		userIDs = []uint64{1}
	}

	scenarios := []EarnScenario{
		{"Checkin", func(int) EarnPayload { return EarnPayload{Type: "checkin"} }},
		{"Ad View", func(int) EarnPayload {
			return EarnPayload{Type: "ad_view", IdempotencyToken: uuid.NewString(), AdUnitID: "rewarded-1", AdNetwork: "admob"}
		}},
		{"Ad Replay", func(int) EarnPayload {
			return EarnPayload{Type: "ad_view", IdempotencyToken: replayToken, AdUnitID: "rewarded-1", AdNetwork: "admob"}
		}},
		{"Lesson Pass", func(jobID int) EarnPayload {
			return EarnPayload{Type: "lesson", ModuleID: fmt.Sprintf("module-%d", jobID%20), QuizScore: 90}
		}},
		{"Lesson Fail", func(jobID int) EarnPayload {
			return EarnPayload{Type: "lesson", ModuleID: fmt.Sprintf("module-%d", jobID%20), QuizScore: 40}
		}},
	}

	fmt.Printf("Load testing earn API across %d users: %v\n", len(userIDs), userIDs)
	fmt.Printf("Earn scenarios: %d\n", len(scenarios))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	client := &http.Client{Timeout: 10 * time.Second}

	if *createUsers {
		for _, id := range userIDs {
			if err := createUser(client, *baseURL, id); err != nil {
				fmt.Printf("create user %d: %v\n", id, err)
			}
		}
	}

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		StatusCounts:    make(map[int]int),
		ErrorCounts:     make(map[string]int),
		UserStats:       make(map[uint64]int),
		ScenarioStats:   make(map[string]int),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(client, *baseURL, *deviceID, *delayMs, userIDs, scenarios, jobs, results, stats)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			stats.record(result)
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := stats.Credited + stats.Rejected + stats.Failed
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	<-collected
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)
	printResults(stats)
}

func (s *TestStats) record(result TestResult) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	switch {
	case result.Error != nil:
		s.Failed++
		s.ErrorCounts[result.Error.Error()]++
	case result.StatusCode >= 200 && result.StatusCode < 300:
		s.Credited++
	case result.StatusCode >= 400 && result.StatusCode < 500:
		s.Rejected++
	default:
		s.Failed++
		s.ErrorCounts[fmt.Sprintf("HTTP status code %d", result.StatusCode)]++
	}
	if result.StatusCode != 0 {
		s.StatusCounts[result.StatusCode]++
	}

	s.ResponseTimes = append(s.ResponseTimes, result.ResponseTime)
	s.TotalResponseTime += result.ResponseTime
	s.MinResponseTime = min(s.MinResponseTime, result.ResponseTime)
	s.MaxResponseTime = max(s.MaxResponseTime, result.ResponseTime)
}

func createUser(client *http.Client, baseURL string, userID uint64) error {
	body, err := json.Marshal(map[string]any{"userId": userID})
	if err != nil {
		return err
	}
	resp, err := client.Post(baseURL+"/v1/users", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}
	return nil
}

func worker(client *http.Client, baseURL, deviceID string, delayMs int, userIDs []uint64,
	scenarios []EarnScenario, jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	for jobID := range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		userID := userIDs[rand.Intn(len(userIDs))]
		scenario := scenarios[rand.Intn(len(scenarios))]

		stats.Lock.Lock()
		stats.UserStats[userID]++
		stats.ScenarioStats[scenario.Name]++
		stats.Lock.Unlock()

		result := TestResult{Scenario: scenario.Name}

		jsonData, err := json.Marshal(scenario.Build(jobID))
		if err != nil {
			result.Error = err
			results <- result
			continue
		}

		req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/me/earn", bytes.NewBuffer(jsonData))
		if err != nil {
			result.Error = err
			results <- result
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", strconv.FormatUint(userID, 10))
		if deviceID != "" {
			req.Header.Set("X-Device-ID", deviceID)
		}

		startTime := time.Now()
		resp, err := client.Do(req)
		result.ResponseTime = time.Since(startTime)

		if err != nil {
			result.Error = err
		} else {
			result.StatusCode = resp.StatusCode
			resp.Body.Close()
		}

		results <- result
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)*p/100]
}

func printResults(stats *TestStats) {
	total := float64(stats.TotalRequests)
	tps := total / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	sortedTimes := slices.Clone(stats.ResponseTimes)
	slices.Sort(sortedTimes)

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Credited:            %d (%.1f%%)\n", stats.Credited, float64(stats.Credited)/total*100)
	fmt.Printf("Rejected (4xx):      %d (%.1f%%)\n", stats.Rejected, float64(stats.Rejected)/total*100)
	fmt.Printf("Failed:              %d (%.1f%%)\n", stats.Failed, float64(stats.Failed)/total*100)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Requests/sec:        %.2f\n", tps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", percentile(sortedTimes, 50))
	fmt.Printf("P90 Response:        %v\n", percentile(sortedTimes, 90))
	fmt.Printf("P99 Response:        %v\n", percentile(sortedTimes, 99))

	fmt.Println("\n----------------- STATUS CODES -----------------")
	for code, count := range stats.StatusCounts {
		fmt.Printf("%d: %d\n", code, count)
	}

	fmt.Println("\n----------------- USER DISTRIBUTION -----------------")
	for userID, count := range stats.UserStats {
		fmt.Printf("User %d:    %d requests (%.1f%%)\n", userID, count, float64(count)/total*100)
	}

	fmt.Println("\n----------------- SCENARIO DISTRIBUTION -----------------")
	for scenario, count := range stats.ScenarioStats {
		fmt.Printf("%-15s: %d requests (%.1f%%)\n", scenario, count, float64(count)/total*100)
	}

	if stats.Failed > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count, float64(count)/total*100)
		}
	}

	fmt.Println("\n================= CONCLUSION =================")
	if stats.Failed == 0 {
		fmt.Println("No transport errors or 5xx answers; every request was credited or rejected by a rule")
	} else {
		fmt.Printf("%d requests failed outside the economy rules\n", stats.Failed)
	}
	fmt.Println("================================================")
}
