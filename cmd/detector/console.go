package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"solana-token-detector/internal/detector"
	"solana-token-detector/internal/domain"
)

// consoleSink prints a token report for every detection outcome.
type consoleSink struct {
	out   io.Writer
	debug bool
}

func (s *consoleSink) Publish(e detector.Event) {
	if e.Type == detector.EventDecision {
		if s.debug {
			fmt.Fprintf(s.out, "DEBUG: %s score=%d threshold=%d tier=%s\n",
				e.Mint, e.Score, e.Threshold, e.Tier)
		}
		return
	}
	fmt.Fprintln(s.out, formatReport(e))
}

// formatReport renders the token report shown for each evaluated mint.
func formatReport(e detector.Event) string {
	name := e.Name
	if name == "" {
		name = "Unknown Token"
	}
	creator := e.Creator
	if creator == "" {
		creator = "Unknown"
	}

	sep := strings.Repeat("=", 80)

	var b strings.Builder
	b.WriteString(sep + "\n")
	b.WriteString("NEW TOKEN DETECTED\n")
	b.WriteString(sep + "\n\n")
	b.WriteString("TOKEN INFORMATION:\n")
	fmt.Fprintf(&b, "Token Name: %s\n", name)
	fmt.Fprintf(&b, "Token Symbol: %s\n", e.Symbol)
	fmt.Fprintf(&b, "Token Mint: %s\n", e.Mint)
	fmt.Fprintf(&b, "Creator Wallet: %s\n", creator)
	fmt.Fprintf(&b, "Detection Time: %s\n\n", e.DetectedAt.Format(time.RFC3339))
	b.WriteString("RUGCHECK ANALYSIS:\n")
	fmt.Fprintf(&b, "- Safety Score: %d/100\n", e.Score)
	fmt.Fprintf(&b, "- Risk Level: %s\n", e.Tier)
	fmt.Fprintf(&b, "- Recommendation: %s\n", e.Recommendation)

	if len(e.Reasons) > 0 {
		b.WriteString("- Risk Reasons:\n")
		for _, r := range e.Reasons {
			fmt.Fprintf(&b, "    * %s (%s)\n", r.Description, r.Severity)
		}
	}

	return b.String()
}

// formatRecord renders one stored record for -mode history.
func formatRecord(i int, rec *domain.SafeTokenRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, valueOr(rec.Name, "Unknown Token"), rec.Symbol)
	fmt.Fprintf(&b, "   Mint: %s\n", rec.Mint)
	fmt.Fprintf(&b, "   Creator: %s\n", valueOr(rec.Creator, "Unknown"))
	fmt.Fprintf(&b, "   Score: %d/100  Risk: %s  Recommendation: %s\n",
		rec.Score, rec.Tier, rec.Recommendation)
	fmt.Fprintf(&b, "   Accepted: %s\n", rec.AcceptedAt.Format(time.RFC3339))
	return b.String()
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
