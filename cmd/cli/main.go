package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "assignment":
		handleAssignment(args)
	case "checklist":
		handleChecklist(args)
	case "notification":
		handleNotification(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerOrganization(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleAssignment(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager assignment <list|get|complete>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listAssignments(args[1:])
	case "get":
		getAssignment(args[1:])
	case "complete":
		completeItem(args[1:])
	default:
		fmt.Printf("unknown assignment command: %s\n", subCmd)
	}
}

func handleChecklist(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager checklist <list>")
		return
	}

	switch args[0] {
	case "list":
		listChecklists(args[1:])
	default:
		fmt.Printf("unknown checklist command: %s\n", args[0])
	}
}

func handleNotification(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager notification <list|read-all>")
		return
	}

	switch args[0] {
	case "list":
		listNotifications(args[1:])
	case "read-all":
		markAllRead()
	default:
		fmt.Printf("unknown notification command: %s\n", args[0])
	}
}

func registerOrganization(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	org := fs.String("org", "", "organization name")
	username := fs.String("username", "", "owner username")
	email := fs.String("email", "", "owner email")
	fullName := fs.String("name", "", "owner full name")
	password := fs.String("password", "", "owner password")

	fs.Parse(args)

	if *org == "" || *username == "" || *password == "" {
		fmt.Println("Error: org, username, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"organization_name": *org,
		"username":          *username,
		"email":             *email,
		"full_name":         *fullName,
		"password":          *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Organization registered: %s\n", *org)
		fmt.Printf("  organization_id: %v\n", result["organization_id"])
		fmt.Println("  Log in with: taskmanager auth login -org-id <organization_id> -username <username> -password <password>")
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result)
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	orgID := fs.String("org-id", "", "organization id")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *orgID == "" || *username == "" || *password == "" {
		fmt.Println("Error: org-id, username, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"organization_id": *orgID,
		"username":        *username,
		"password":        *password,
	}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *username)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result)
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	req, _ := http.NewRequest("GET", getAPIURL()+"/auth/me", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Println("Not logged in")
		return
	}

	var me map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&me)
	fmt.Printf("✓ Logged in as %v (%v)\n", me["username"], me["full_name"])
}

func listAssignments(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	date := fs.String("date", "", "work date filter (YYYY-MM-DD)")
	status := fs.String("status", "", "status filter")
	fs.Parse(args)

	url := getAPIURL() + "/assignments?per_page=50"
	if *date != "" {
		url += "&date_from=" + *date + "&date_to=" + *date
	}
	if *status != "" {
		url += "&status=" + *status
	}

	req, _ := http.NewRequest("GET", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Data []map[string]interface{} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWORK DATE\tSTATUS\tUSER")
	for _, a := range result.Data {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", a["id"], a["work_date"], a["status"], a["user_id"])
	}
	w.Flush()
}

func getAssignment(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: taskmanager assignment get <assignment-id>")
		return
	}

	req, _ := http.NewRequest("GET", getAPIURL()+"/assignments/"+args[0], nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var a map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&a)
	if resp.StatusCode != 200 {
		fmt.Printf("✗ %v\n", a)
		return
	}

	fmt.Printf("Assignment %v (%v, %v)\n", a["id"], a["work_date"], a["status"])
	snapshot, _ := a["checklist_snapshot"].(map[string]interface{})
	items, _ := snapshot["items"].([]interface{})
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM ID\tTITLE\tDONE")
	for _, raw := range items {
		it, _ := raw.(map[string]interface{})
		fmt.Fprintf(w, "%v\t%v\t%v\n", it["template_item_id"], it["title"], it["is_completed"])
	}
	w.Flush()
}

func completeItem(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: taskmanager assignment complete <assignment-id> <item-id>")
		return
	}

	url := fmt.Sprintf("%s/assignments/%s/items/%s/complete", getAPIURL(), args[0], args[1])
	req, _ := http.NewRequest("POST", url, nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Item completed, assignment status: %v\n", result["status"])
	} else {
		fmt.Printf("✗ %v\n", result)
	}
}

func listChecklists(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/checklists", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var templates []map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&templates)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE")
	for _, t := range templates {
		fmt.Fprintf(w, "%v\t%v\t%v\n", t["id"], t["name"], t["is_active"])
	}
	w.Flush()
}

func listNotifications(args []string) {
	_ = args
	req, _ := http.NewRequest("GET", getAPIURL()+"/notifications?per_page=20", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		Data []map[string]interface{} `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "READ\tTYPE\tMESSAGE")
	for _, n := range result.Data {
		fmt.Fprintf(w, "%v\t%v\t%v\n", n["is_read"], n["type"], n["message"])
	}
	w.Flush()
}

func markAllRead() {
	req, _ := http.NewRequest("POST", getAPIURL()+"/notifications/read-all", nil)
	addAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		fmt.Printf("✓ Marked %v notifications read\n", result["marked"])
	} else {
		fmt.Printf("✗ %v\n", result)
	}
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("TASKMANAGER_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api/v1"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.taskmanager/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.taskmanager", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printUsage() {
	fmt.Print(`TaskManager CLI

Usage:
  taskmanager <command> [options]

Commands:
  auth          Authentication (register, login, logout, who)
  assignment    Work assignments (list, get, complete)
  checklist     Checklist templates (list)
  notification  Notifications (list, read-all)
  help          Show this help message

Environment Variables:
  TASKMANAGER_API    API endpoint (default: http://localhost:8080/api/v1)

Examples:
  taskmanager auth register -org "Acme Diner" -username owner -password secret123
  taskmanager auth login -org-id <uuid> -username owner -password secret123
  taskmanager assignment list -date 2026-03-09
  taskmanager assignment complete <assignment-id> <item-id>
`)
}
