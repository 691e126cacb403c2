// Command simulator drives a running TaskFlow API for development: it seeds
// accounts with tasks and runs an end-to-end smoke pass.
package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultPassword = "Simulat0r"

var (
	statuses   = []string{"todo", "in-progress", "completed"}
	priorities = []string{"low", "medium", "high"}
	tagPool    = []string{"work", "home", "errand", "urgent", "ops", "reading", "health", "finance"}
	verbs      = []string{"Write", "Review", "Plan", "Fix", "Call", "Book", "Clean", "Update"}
	nouns      = []string{"report", "invoice", "trip", "bug", "dentist", "garage", "roadmap", "budget"}
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	root := &cobra.Command{
		Use:           "simulator",
		Short:         "Development tool that drives a running TaskFlow API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", apiURL, "backend base URL (env API_URL)")

	var users, tasks int
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Register accounts and fill them with random tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if users < 1 || tasks < 0 {
				return errors.New("--users must be at least 1 and --tasks not negative")
			}
			return seedCmd(NewAPIClient(apiURL), users, tasks)
		},
	}
	seed.Flags().IntVar(&users, "users", 3, "number of accounts to create")
	seed.Flags().IntVar(&tasks, "tasks", 25, "tasks per account")

	smoke := &cobra.Command{
		Use:   "smoke",
		Short: "Walk every endpoint once and verify the responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return smokeCmd(NewAPIClient(apiURL))
		},
	}

	root.AddCommand(seed, smoke)
	return root
}

func seedCmd(client *APIClient, users, tasks int) error {
	fmt.Println("=== TaskFlow Simulator: Seed ===")
	fmt.Println()

	for i := 1; i <= users; i++ {
		email := fmt.Sprintf("sim_%s@example.com", uuid.NewString()[:8])
		auth, err := client.Register(fmt.Sprintf("Sim User %s", letters(i)), email, defaultPassword)
		if err != nil {
			return err
		}

		for j := 0; j < tasks; j++ {
			if _, err := client.CreateTask(auth.Token, randomTask()); err != nil {
				return fmt.Errorf("user %s: %w", email, err)
			}
		}

		stats, err := client.GetStats(auth.Token)
		if err != nil {
			return err
		}
		fmt.Printf("  [%d/%d] %s  tasks=%d todo=%d in-progress=%d completed=%d\n",
			i, users, email, stats.Total,
			stats.ByStatus["todo"], stats.ByStatus["in-progress"], stats.ByStatus["completed"])
	}

	fmt.Println()
	fmt.Printf("All accounts use password %q\n", defaultPassword)
	return nil
}

func randomTask() map[string]interface{} {
	task := map[string]interface{}{
		"title":    fmt.Sprintf("%s %s", verbs[rand.IntN(len(verbs))], nouns[rand.IntN(len(nouns))]),
		"status":   statuses[rand.IntN(len(statuses))],
		"priority": priorities[rand.IntN(len(priorities))],
	}

	n := rand.IntN(3)
	tags := make([]string, 0, n)
	for _, idx := range rand.Perm(len(tagPool))[:n] {
		tags = append(tags, tagPool[idx])
	}
	task["tags"] = tags

	if rand.IntN(2) == 0 {
		due := time.Now().AddDate(0, 0, rand.IntN(60)-10)
		task["dueDate"] = due.Format("2006-01-02")
	}
	return task
}

// letters maps 1 to "A", 2 to "B" and so on; names may not contain digits.
func letters(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}

// step runs one smoke check and prints its outcome.
func step(name string, fn func() error) error {
	fmt.Printf("%-40s ", name+"...")
	if err := fn(); err != nil {
		fmt.Println("FAILED")
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Println("OK")
	return nil
}

func expectStatus(err error, status int) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == status {
		return nil
	}
	if err == nil {
		return fmt.Errorf("expected status %d, request succeeded", status)
	}
	return fmt.Errorf("expected status %d: %w", status, err)
}

func smokeCmd(client *APIClient) error {
	fmt.Println("=== TaskFlow Simulator: Smoke ===")
	fmt.Println()

	email := fmt.Sprintf("smoke_%s@example.com", uuid.NewString()[:8])
	var token, taskID string

	steps := []struct {
		name string
		fn   func() error
	}{
		{"register", func() error {
			auth, err := client.Register("Smoke Test", email, defaultPassword)
			if err != nil {
				return err
			}
			token = auth.Token
			return nil
		}},
		{"duplicate register rejected", func() error {
			_, err := client.Register("Smoke Test", email, defaultPassword)
			return expectStatus(err, http.StatusConflict)
		}},
		{"login", func() error {
			auth, err := client.Login(email, defaultPassword)
			if err != nil {
				return err
			}
			token = auth.Token
			return nil
		}},
		{"wrong password rejected", func() error {
			_, err := client.Login(email, "Wrong"+defaultPassword)
			return expectStatus(err, http.StatusUnauthorized)
		}},
		{"me", func() error {
			user, err := client.Me(token)
			if err != nil {
				return err
			}
			if user.Email != email {
				return fmt.Errorf("me returned %s", user.Email)
			}
			return nil
		}},
		{"create task", func() error {
			task, err := client.CreateTask(token, map[string]interface{}{
				"title": "Smoke task",
				"tags":  []string{"smoke"},
			})
			if err != nil {
				return err
			}
			taskID = task.ID
			return nil
		}},
		{"search by tag", func() error {
			page, err := client.ListTasks(token, url.Values{"search": {"smoke"}})
			if err != nil {
				return err
			}
			if page.Pagination.Total != 1 {
				return fmt.Errorf("expected 1 hit, got %d", page.Pagination.Total)
			}
			return nil
		}},
		{"update task", func() error {
			task, err := client.UpdateTask(token, taskID, map[string]interface{}{"status": "completed"})
			if err != nil {
				return err
			}
			if task.Status != "completed" {
				return fmt.Errorf("status is %s", task.Status)
			}
			return nil
		}},
		{"empty update rejected", func() error {
			_, err := client.UpdateTask(token, taskID, map[string]interface{}{})
			return expectStatus(err, http.StatusBadRequest)
		}},
		{"stats", func() error {
			stats, err := client.GetStats(token)
			if err != nil {
				return err
			}
			if stats.ByStatus["completed"] != 1 || stats.Total != 1 {
				return fmt.Errorf("unexpected stats %+v", stats)
			}
			return nil
		}},
		{"delete task", func() error {
			return client.DeleteTask(token, taskID)
		}},
		{"deleted task gone", func() error {
			_, err := client.GetTask(token, taskID)
			return expectStatus(err, http.StatusNotFound)
		}},
		{"pagination clamps limit", func() error {
			page, err := client.ListTasks(token, url.Values{"limit": {strconv.Itoa(1000)}})
			if err != nil {
				return err
			}
			if page.Pagination.Limit != 100 {
				return fmt.Errorf("limit is %d", page.Pagination.Limit)
			}
			return nil
		}},
	}

	for _, s := range steps {
		if err := step(s.name, s.fn); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println("All checks passed")
	return nil
}
