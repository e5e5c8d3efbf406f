package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the ODRE daily gross consumption dataset
const DefaultEndpoint = "https://odre.opendatasoft.com/api/explore/v2.1/catalog/datasets/consommation-quotidienne-brute/records"

// RemoteSource fetches consumption records from the ODRE API
type RemoteSource struct {
	Endpoint    string
	DateField   string
	ValueField  string
	RecordLimit int
	Offset      int
	OrderBy     string
	HTTPClient  *http.Client
}

// NewRemoteSource creates a remote source for the given endpoint and
// field names. A zero recordLimit falls back to 100 records.
func NewRemoteSource(endpoint, dateField, valueField string, recordLimit int, timeout time.Duration) *RemoteSource {
	if recordLimit <= 0 {
		recordLimit = 100
	}
	return &RemoteSource{
		Endpoint:    endpoint,
		DateField:   dateField,
		ValueField:  valueField,
		RecordLimit: recordLimit,
		OrderBy:     fmt.Sprintf("%s DESC", dateField),
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

// odreResponse matches the explore/v2.1 records payload
type odreResponse struct {
	TotalCount int              `json:"total_count"`
	Results    []map[string]any `json:"results"`
}

// Acquire performs a single GET against the endpoint. One attempt, no
// retry; callers decide whether to try again.
func (s *RemoteSource) Acquire(ctx context.Context) (*RawTable, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(s.RecordLimit))
	params.Set("offset", strconv.Itoa(s.Offset))
	if s.OrderBy != "" {
		params.Set("order_by", s.OrderBy)
	}

	reqURL := fmt.Sprintf("%s?%s", s.Endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, &AcquisitionError{Mode: ModeRemote, Location: s.Endpoint, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, &AcquisitionError{Mode: ModeRemote, Location: s.Endpoint, Err: fmt.Errorf("making request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AcquisitionError{Mode: ModeRemote, Location: s.Endpoint, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AcquisitionError{Mode: ModeRemote, Location: s.Endpoint, Err: fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))}
	}

	var payload odreResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &AcquisitionError{
			Mode:     ModeRemote,
			Location: s.Endpoint,
			Line:     jsonErrorLine(body, err),
			Err:      fmt.Errorf("parsing JSON response: %w", err),
		}
	}

	table := &RawTable{Columns: []string{s.DateField, s.ValueField}}
	for _, rec := range payload.Results {
		table.Rows = append(table.Rows, []string{
			fieldString(rec[s.DateField]),
			fieldString(rec[s.ValueField]),
		})
	}

	return table, nil
}

// fieldString renders a decoded JSON value as a cell. Nulls and
// missing fields become empty cells, which the normalizer drops.
func fieldString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// jsonErrorLine converts a JSON decode error's byte offset to a
// 1-based line number, or 0 if the error carries no offset.
func jsonErrorLine(body []byte, err error) int {
	var offset int64
	switch e := err.(type) {
	case *json.SyntaxError:
		offset = e.Offset
	case *json.UnmarshalTypeError:
		offset = e.Offset
	default:
		return 0
	}
	if offset <= 0 || offset > int64(len(body)) {
		return 0
	}
	return bytes.Count(body[:offset], []byte("\n")) + 1
}
