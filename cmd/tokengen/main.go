// Package main provides a CLI tool for generating test tokens for the
// medgate API. These tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"medgate/internal/principal"
	"medgate/internal/token"
)

// Dev signing key, matches config.go when JWT_SIGNING_KEY is not set.
const devSigningKey = "dev-secret-key-change-in-production"

const (
	defaultStageTTL   = 15 * time.Minute
	defaultSessionTTL = 24 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	stageCmd := flag.NewFlagSet("stage", flag.ExitOnError)
	stagePrincipalID := stageCmd.String("principal-id", "", "Principal ID (UUID). Generated if empty.")
	stageEmail := stageCmd.String("email", "doc1@medgate.local", "Principal email")
	stageRole := stageCmd.String("role", "staff", "Role: staff or admin")
	stageVerified := stageCmd.Bool("verified", false, "Mark the stage token biometric-verified")
	stageTTL := stageCmd.Duration("ttl", defaultStageTTL, "Token time-to-live")
	stageJSON := stageCmd.Bool("json", false, "Output as JSON")

	sessionCmd := flag.NewFlagSet("session", flag.ExitOnError)
	sessionPrincipalID := sessionCmd.String("principal-id", "", "Principal ID (UUID). Generated if empty.")
	sessionEmail := sessionCmd.String("email", "admin@medgate.local", "Principal email")
	sessionRole := sessionCmd.String("role", "admin", "Role: staff or admin")
	sessionTTL := sessionCmd.Duration("ttl", defaultSessionTTL, "Token time-to-live")
	sessionJSON := sessionCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "stage":
		stageCmd.Parse(os.Args[2:])
		generate("stage", *stagePrincipalID, *stageEmail, *stageRole, *stageVerified, *stageTTL, *stageJSON)
	case "session":
		sessionCmd.Parse(os.Args[2:])
		generate("session", *sessionPrincipalID, *sessionEmail, *sessionRole, false, *sessionTTL, *sessionJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate test tokens for the medgate API

WARNING: These tokens use the dev signing key and will NOT work in production.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  stage     Generate a stage token (mid-login credential)
  session   Generate a session token (full credential)

Examples:
  # Stage token for a staff login in progress
  tokengen stage

  # Stage token that already passed the biometric stage
  tokengen stage -verified

  # Admin session token for the activity endpoints
  tokengen session -role admin

  # Output as JSON
  tokengen session -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generate(kind, principalID, email, role string, verified bool, ttl time.Duration, jsonOutput bool) {
	parsedRole, err := principal.ParseRole(role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid role %q: must be staff or admin\n", role)
		os.Exit(1)
	}

	p := &principal.Principal{
		ID:    parseOrGenerateUUID(principalID),
		Email: email,
		Role:  parsedRole,
	}

	var issuer *token.Issuer
	var signed string
	switch kind {
	case "stage":
		issuer = token.NewIssuer(devSigningKey, "medgate", ttl, defaultSessionTTL)
		if verified {
			signed, err = issuer.IssueVerifiedStageToken(p)
		} else {
			signed, err = issuer.IssueStageToken(p)
		}
	case "session":
		issuer = token.NewIssuer(devSigningKey, "medgate", defaultStageTTL, ttl)
		signed, err = issuer.IssueSessionToken(p)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	usage := map[string]string{
		"header": "Authorization: Bearer " + signed,
	}
	if kind == "session" {
		usage["example"] = "curl -H 'Authorization: Bearer ...' http://localhost:8080/activities/suspicious"
	} else {
		usage["example"] = "curl -H 'Authorization: Bearer ...' -d '{...}' http://localhost:8080/auth/biometric"
	}

	if jsonOutput {
		out := tokenOutput{
			Token:     signed,
			Type:      kind,
			ExpiresIn: ttl.String(),
			Usage:     usage,
		}
		encoded, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(encoded))
		return
	}

	fmt.Printf("%s token (expires in %s):\n\n%s\n\n%s\n", kind, ttl, signed, usage["header"])
}

func parseOrGenerateUUID(value string) uuid.UUID {
	if value == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid principal-id %q: %v\n", value, err)
		os.Exit(1)
	}
	return id
}
