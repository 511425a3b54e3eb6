package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core"
	"github.com/tmusoni/darasa/core/student"
)

// Client is the remote data client: it issues CRUD requests against an
// ordered list of candidate base URLs combined with an "/api"-prefixed and an
// unprefixed path variant, taking the first successful response. Reads fall
// back to the local cache snapshot when every candidate fails, unless the
// caller asks for a forced read.
//
// Writes stop at the first observed success. A write that succeeds
// server-side without the client observing the response may be resubmitted by
// a later candidate; that is an accepted risk, not an at-most-once guarantee.
type Client struct {
	bases       []string
	http        *http.Client
	cache       Store
	logger      core.Logger
	interpreter *student.Interpreter
}

func New(conf *core.Config, cache Store, logger core.Logger) *Client {
	bases := conf.Client.Candidates
	if conf.Client.BaseURL != "" {
		bases = []string{conf.Client.BaseURL}
	}
	return &Client{
		bases:       bases,
		http:        &http.Client{Timeout: conf.Client.Timeout},
		cache:       cache,
		logger:      logger,
		interpreter: student.NewInterpreter(),
	}
}

// candidates expands a logical path into the full ordered trial list.
func (c *Client) candidates(path string) []string {
	urls := make([]string, 0, 2*len(c.bases))
	for _, base := range c.bases {
		urls = append(urls, base+"/api"+path, base+path)
	}
	return urls
}

// FetchStudents reads the whole collection. In forced mode candidate
// exhaustion surfaces as an error; otherwise the last cached snapshot is
// returned instead.
func (c *Client) FetchStudents(ctx context.Context, forced bool) ([]student.Student, error) {
	docs, err := c.getCollection(ctx, "/students")
	if err != nil {
		if forced {
			return nil, err
		}
		c.logger.Warn(fmt.Sprintf("all candidates failed, falling back to cache: %v", err))
		return c.cache.LoadSnapshot(ctx)
	}

	students := normalizeDocs(docs)
	if err = c.cache.SaveSnapshot(ctx, students); err != nil {
		c.logger.Error(fmt.Sprintf("caching snapshot: %v", err), err)
	}
	return students, nil
}

// FetchStudentsByClass reads one class worth of students. No cache fallback:
// the snapshot holds the full collection only, so the filter is applied to it.
func (c *Client) FetchStudentsByClass(ctx context.Context, class string, forced bool) ([]student.Student, error) {
	docs, err := c.getCollection(ctx, "/classes/"+url.PathEscape(class)+"/students")
	if err == nil {
		return normalizeDocs(docs), nil
	}
	if forced {
		return nil, err
	}

	snapshot, cacheErr := c.cache.LoadSnapshot(ctx)
	if cacheErr != nil {
		return nil, err
	}
	filtered := make([]student.Student, 0, len(snapshot))
	for _, s := range snapshot {
		if s.Class == class {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

// CreateStudent posts a new record; the server assigns identifier and
// timestamps.
func (c *Client) CreateStudent(ctx context.Context, ns student.NewStudent) (student.Student, error) {
	doc, err := c.writeDoc(ctx, http.MethodPost, "/students", ns)
	if err != nil {
		return student.Student{}, err
	}
	created := student.FromDocument(doc)
	c.mutateSnapshot(ctx, func(snapshot []student.Student) []student.Student {
		return append(snapshot, created)
	})
	return created, nil
}

// UpdateStudent puts a full-document update.
func (c *Client) UpdateStudent(ctx context.Context, id string, us student.UpdateStudent) (student.Student, error) {
	doc, err := c.writeDoc(ctx, http.MethodPut, "/students/"+url.PathEscape(id), us)
	if err != nil {
		return student.Student{}, err
	}
	updated := student.FromDocument(doc)
	c.mutateSnapshot(ctx, func(snapshot []student.Student) []student.Student {
		for i, s := range snapshot {
			if s.ID == updated.ID {
				snapshot[i] = updated
			}
		}
		return snapshot
	})
	return updated, nil
}

// DeleteStudent removes a record by identifier.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	if _, err := c.roundTrip(ctx, http.MethodDelete, "/students/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	c.mutateSnapshot(ctx, func(snapshot []student.Student) []student.Student {
		kept := snapshot[:0]
		for _, s := range snapshot {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		return kept
	})
	return nil
}

// FetchClassSummaries reads the aggregated per-class views.
func (c *Client) FetchClassSummaries(ctx context.Context) ([]student.ClassSummary, error) {
	raw, err := c.roundTrip(ctx, http.MethodGet, "/classes", nil)
	if err != nil {
		return nil, err
	}
	var summaries []student.ClassSummary
	if err = json.Unmarshal(unwrapEnvelope(raw), &summaries); err != nil {
		return nil, errors.Wrap(err, "decoding class summaries")
	}
	return summaries, nil
}

// Query fetches the collection (cache fallback allowed) and runs the
// free-text query interpreter over it.
func (c *Client) Query(ctx context.Context, query string) (student.QueryResult, error) {
	students, err := c.FetchStudents(ctx, false)
	if err != nil {
		return student.QueryResult{}, err
	}
	return c.interpreter.Interpret(students, query), nil
}

// getCollection iterates candidates for a collection read; the first
// successful response with a decodable body wins. A malformed body is treated
// like a transport failure.
func (c *Client) getCollection(ctx context.Context, path string) ([]map[string]interface{}, error) {
	var lastErr error
	for _, candidate := range c.candidates(path) {
		raw, err := c.do(ctx, http.MethodGet, candidate, nil)
		if err != nil {
			lastErr = err
			continue
		}
		docs, err := decodeCollection(raw)
		if err != nil {
			lastErr = errors.Wrapf(err, "decoding body from %s", candidate)
			continue
		}
		return docs, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no candidates configured")
	}
	return nil, lastErr
}

// roundTrip iterates candidates for a single request; iteration stops at the
// first observed success.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, errors.Wrap(err, "encoding payload")
		}
	}

	var lastErr error
	for _, candidate := range c.candidates(path) {
		raw, err := c.do(ctx, method, candidate, body)
		if err != nil {
			lastErr = err
			continue
		}
		return raw, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no candidates configured")
	}
	return nil, lastErr
}

func (c *Client) writeDoc(ctx context.Context, method, path string, payload interface{}) (map[string]interface{}, error) {
	raw, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err = json.Unmarshal(unwrapEnvelope(raw), &doc); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	return doc, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "building request %s %s", method, u)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, u)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading body from %s", u)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("%s %s: status %d", method, u, resp.StatusCode)
	}
	return raw, nil
}

// mutateSnapshot applies a read-copy-mutate-write cycle to the cached
// collection. It is best-effort: a missing snapshot or store failure only
// logs.
func (c *Client) mutateSnapshot(ctx context.Context, mutate func([]student.Student) []student.Student) {
	snapshot, err := c.cache.LoadSnapshot(ctx)
	if err != nil {
		if errors.Cause(err) != ErrNoSnapshot {
			c.logger.Warn(fmt.Sprintf("loading snapshot for mutation: %v", err))
		}
		return
	}
	if err = c.cache.SaveSnapshot(ctx, mutate(snapshot)); err != nil {
		c.logger.Error(fmt.Sprintf("storing mutated snapshot: %v", err), err)
	}
}

// decodeCollection accepts a bare array, or an object with a "data" or
// "items" field; the envelope shape is not fixed.
func decodeCollection(raw []byte) ([]map[string]interface{}, error) {
	var docs []map[string]interface{}
	if err := json.Unmarshal(raw, &docs); err == nil {
		return docs, nil
	}

	var envelope struct {
		Data  []map[string]interface{} `json:"data"`
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.Wrap(err, "unrecognized response envelope")
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	if envelope.Items != nil {
		return envelope.Items, nil
	}
	return nil, errors.New("unrecognized response envelope")
}

// unwrapEnvelope peels a {"data": ...} wrapper off a single-document
// response, passing anything else through untouched.
func unwrapEnvelope(raw []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}

func normalizeDocs(docs []map[string]interface{}) []student.Student {
	students := make([]student.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, student.FromDocument(doc))
	}
	return students
}
