package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const graphTimeLayout = "2006-01-02T15:04:05"

// Client reads the inbox, books meetings and builds compose links on behalf
// of the user owning AccessToken.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
	Now    func() time.Time
}

// NewClient builds a client. A nil httpClient gets a 30s timeout client and
// a nil logger uses slog.Default().
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaults.LookbackDays
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.ComposeURL == "" {
		cfg.ComposeURL = defaults.ComposeURL
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger.With("component", "mail"), Now: time.Now}
}

// DraftLink returns a compose deep link prefilled with subject, body and
// recipients. Nothing is sent.
func (c *Client) DraftLink(subject, body string, to []string) (string, error) {
	var recipients []string
	for _, r := range to {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return "", fmt.Errorf("%w: at least one recipient is required", ErrInvalidDraft)
	}

	q := url.Values{}
	q.Set("subject", subject)
	q.Set("body", body)
	q.Set("to", strings.Join(recipients, ","))
	return c.cfg.ComposeURL + "?" + q.Encode(), nil
}

// ListRecent returns inbox messages received within the lookback window,
// newest first.
func (c *Client) ListRecent(ctx context.Context) ([]domain.Email, error) {
	since := c.Now().UTC().AddDate(0, 0, -c.cfg.LookbackDays)
	q := url.Values{}
	q.Set("$filter", "receivedDateTime ge "+since.Format(time.RFC3339))
	q.Set("$orderby", "receivedDateTime DESC")
	q.Set("$top", strconv.Itoa(c.cfg.PageSize))
	q.Set("$select", "id,subject,from,receivedDateTime,bodyPreview,isRead")

	data, err := c.do(ctx, http.MethodGet, "/me/mailFolders/inbox/messages?"+q.Encode(), nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("listing inbox: %w", err)
	}

	emails := []domain.Email{}
	for _, item := range gjson.GetBytes(data, "value").Array() {
		emails = append(emails, decodeEmail(item))
	}
	return emails, nil
}

// EventRequest describes a meeting to book.
type EventRequest struct {
	Subject   string
	Start     time.Time
	End       time.Time
	Attendees []string
	Location  string
	Body      string
}

func (r EventRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidEvent)
	case r.Start.IsZero() || r.End.IsZero():
		return fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	case !r.End.After(r.Start):
		return fmt.Errorf("%w: end must be after start", ErrInvalidEvent)
	}
	return nil
}

// CreateEvent books a meeting on the user's calendar.
func (c *Client) CreateEvent(ctx context.Context, req EventRequest) (domain.Event, error) {
	if err := req.validate(); err != nil {
		return domain.Event{}, err
	}
	body, err := eventBody(req)
	if err != nil {
		return domain.Event{}, fmt.Errorf("building event: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/me/events", body, http.StatusCreated)
	if err != nil {
		return domain.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return decodeEvent(gjson.ParseBytes(data)), nil
}

type jsonField struct {
	path  string
	value any
}

func eventBody(req EventRequest) ([]byte, error) {
	attendees := make([]map[string]any, 0, len(req.Attendees))
	for _, a := range req.Attendees {
		attendees = append(attendees, map[string]any{
			"emailAddress": map[string]string{"address": a},
			"type":         "required",
		})
	}

	fields := []jsonField{
		{"subject", req.Subject},
		{"start.dateTime", req.Start.UTC().Format(graphTimeLayout)},
		{"start.timeZone", "UTC"},
		{"end.dateTime", req.End.UTC().Format(graphTimeLayout)},
		{"end.timeZone", "UTC"},
		{"attendees", attendees},
	}
	if req.Body != "" {
		fields = append(fields, jsonField{"body.contentType", "Text"}, jsonField{"body.content", req.Body})
	}
	if req.Location != "" {
		fields = append(fields, jsonField{"location.displayName", req.Location})
	}

	body := []byte(`{}`)
	for _, f := range fields {
		var err error
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int) ([]byte, error) {
	if c.cfg.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.GraphURL, "/")+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("mail request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	if resp.StatusCode != want {
		c.logger.Error("mail returned unexpected status", "method", method, "path", path,
			"status", resp.StatusCode, "error_code", gjson.GetBytes(data, "error.code").String())
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return data, nil
}

func decodeEmail(item gjson.Result) domain.Email {
	e := domain.Email{
		ID:      item.Get("id").String(),
		Subject: item.Get("subject").String(),
		From:    item.Get("from.emailAddress.address").String(),
		Preview: item.Get("bodyPreview").String(),
		IsRead:  item.Get("isRead").Bool(),
	}
	if ts, err := time.Parse(time.RFC3339, item.Get("receivedDateTime").String()); err == nil {
		e.ReceivedAt = ts
	}
	return e
}

func decodeEvent(item gjson.Result) domain.Event {
	e := domain.Event{
		ID:        item.Get("id").String(),
		Subject:   item.Get("subject").String(),
		Start:     item.Get("start.dateTime").String(),
		End:       item.Get("end.dateTime").String(),
		Location:  item.Get("location.displayName").String(),
		WebLink:   item.Get("webLink").String(),
		Attendees: []string{},
	}
	for _, a := range item.Get("attendees.#.emailAddress.address").Array() {
		e.Attendees = append(e.Attendees, a.String())
	}
	return e
}

// ParseEventTime accepts RFC 3339 or a zone-less ISO 8601 date-time, which
// is read as UTC.
func ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, graphTimeLayout, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", ErrInvalidEvent, s)
}
