package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"text/tabwriter"
	"time"

	"marketplace/internal/domain"

	"github.com/cockroachdb/errors"
)

// ErrOwnerLoginRequired is returned by mutating commands before login.
var ErrOwnerLoginRequired = errors.New("owner login required: run catalogctl login")

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// printJSON writes v indented, followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProducts(w io.Writer, format string, products []domain.Product) error {
	if format == "json" {
		return printJSON(w, products)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCREATED")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, strconv.FormatFloat(p.Price, 'f', -1, 64), p.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func printAffiliates(w io.Writer, format string, affiliates []domain.Affiliate) error {
	if format == "json" {
		return printJSON(w, affiliates)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDISCORD\tROBLOX\tCREATED")
	for _, a := range affiliates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Name, a.DiscordURL, a.RobloxURL, a.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func printRecord(w io.Writer, format string, v interface{}, id string) error {
	if format == "json" {
		return printJSON(w, v)
	}
	_, err := fmt.Fprintln(w, id)
	return err
}
