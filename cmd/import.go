package main

import (
	"encoding/csv"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrich/internal/fetch"
	"github.com/sells-group/contact-enrich/internal/model"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import opportunities from CSV",
	Long:  "Upserts opportunities by ID from a CSV with columns url (required), id, domain, is_premium, domain_authority. Existing contact info is never overwritten.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opps, err := readOpportunitiesCSV(importCSVPath)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.ImportOpportunities(ctx, opps)
		if err != nil {
			return eris.Wrap(err, "import opportunities")
		}

		zap.L().Info("import complete",
			zap.Int("imported", n),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

func readOpportunitiesCSV(path string) ([]model.Opportunity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open csv %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read csv header")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["url"]; !ok {
		return nil, eris.New("csv missing required column: url")
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var opps []model.Opportunity
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read csv line %d", line)
		}

		rawURL := field(record, "url")
		normalized, err := fetch.NormalizeURL(rawURL)
		if err != nil {
			return nil, eris.Wrapf(err, "csv line %d: bad url %q", line, rawURL)
		}

		o := model.Opportunity{
			ID:     field(record, "id"),
			URL:    normalized,
			Domain: field(record, "domain"),
		}
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		if o.Domain == "" {
			if u, parseErr := url.Parse(normalized); parseErr == nil {
				o.Domain = u.Hostname()
			}
		}
		if v := field(record, "is_premium"); v != "" {
			premium, parseErr := strconv.ParseBool(v)
			if parseErr != nil {
				return nil, eris.Wrapf(parseErr, "csv line %d: bad is_premium %q", line, v)
			}
			o.IsPremium = premium
		}
		if v := field(record, "domain_authority"); v != "" {
			da, parseErr := strconv.Atoi(v)
			if parseErr != nil {
				return nil, eris.Wrapf(parseErr, "csv line %d: bad domain_authority %q", line, v)
			}
			o.DomainAuthority = da
		}
		opps = append(opps, o)
	}
	return opps, nil
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
