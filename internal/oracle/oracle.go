// internal/oracle/oracle.go
//
// Best-effort word oracles over HTTP.
//
// Responsibilities:
//   - IsWord: ask a dictionary API whether a word exists
//     (GET <dictionary>/<word>; a non-empty JSON array means found).
//   - Related: ask a Datamuse-style API for rhymes, synonyms or antonyms
//     (GET <datamuse>?rel_rhy=<target>&md=f&max=1000), keeping alphabetic
//     words of 3+ letters whose f: frequency tag meets the threshold.
//
// Failure model:
//   - One attempt per lookup, bounded by Timeout. No retries.
//   - Any failure reads as "not found" / empty and is logged at debug level.
//   - Definitive answers are cached; concurrent identical lookups share one request.
//     The shared request outlives a cancelled caller; Timeout still bounds it.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultDictionaryURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	DefaultDatamuseURL   = "https://api.datamuse.com/words"
	DefaultTimeout       = 3 * time.Second
	DefaultMinFrequency  = 2.0

	minLength  = 3
	maxResults = 1000
)

// relParams maps relation names to Datamuse query parameters.
var relParams = map[string]string{
	"rhyme":   "rel_rhy",
	"synonym": "rel_syn",
	"antonym": "rel_ant",
}

var errStatus = errors.New("unexpected status")

// Config points the client at its endpoints. Zero fields take defaults.
type Config struct {
	DictionaryURL string
	DatamuseURL   string
	Timeout       time.Duration
	MinFrequency  float64
	HTTPClient    *http.Client
}

// Client queries the dictionary and relation APIs. Safe for concurrent use.
type Client struct {
	cfg  Config
	http *http.Client

	group singleflight.Group

	mu      sync.RWMutex
	words   map[string]bool
	related map[string][]string
}

// New builds a Client, filling unset Config fields with defaults.
func New(cfg Config) *Client {
	if cfg.DictionaryURL == "" {
		cfg.DictionaryURL = DefaultDictionaryURL
	}
	if cfg.DatamuseURL == "" {
		cfg.DatamuseURL = DefaultDatamuseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MinFrequency <= 0 {
		cfg.MinFrequency = DefaultMinFrequency
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		cfg:     cfg,
		http:    hc,
		words:   make(map[string]bool),
		related: make(map[string][]string),
	}
}

// IsWord reports whether the dictionary knows w. Lookup failures report false.
func (c *Client) IsWord(ctx context.Context, w string) bool {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return false
	}
	c.mu.RLock()
	found, ok := c.words[w]
	c.mu.RUnlock()
	if ok {
		return found
	}

	v, err, _ := c.group.Do("word:"+w, func() (any, error) {
		return c.lookupWord(context.WithoutCancel(ctx), w)
	})
	if err != nil {
		log.Debug().Err(err).Str("word", w).Msg("dictionary lookup failed")
		return false
	}
	found = v.(bool)
	c.mu.Lock()
	c.words[w] = found
	c.mu.Unlock()
	return found
}

// Related lists lowercase words in relation rel ("rhyme", "synonym",
// "antonym") to target. Unknown relations and lookup failures yield nil.
func (c *Client) Related(ctx context.Context, rel, target string) []string {
	param, ok := relParams[rel]
	target = strings.ToLower(strings.TrimSpace(target))
	if !ok || target == "" {
		return nil
	}
	key := rel + ":" + target
	c.mu.RLock()
	words, hit := c.related[key]
	c.mu.RUnlock()
	if hit {
		return words
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.lookupRelated(context.WithoutCancel(ctx), param, target)
	})
	if err != nil {
		log.Debug().Err(err).Str("rel", rel).Str("target", target).Msg("relation lookup failed")
		return nil
	}
	words = v.([]string)
	c.mu.Lock()
	c.related[key] = words
	c.mu.Unlock()
	return words
}

func (c *Client) lookupWord(ctx context.Context, w string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.cfg.DictionaryURL, "/")+"/"+url.PathEscape(w), nil)
	if err != nil {
		return false, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.StatusCode != http.StatusOK:
		return false, fmt.Errorf("dictionary %s: %w %d", w, errStatus, res.StatusCode)
	}
	var entries []json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		// Some dictionaries answer 200 with an error object for unknown words.
		return false, nil
	}
	return len(entries) > 0, nil
}

type datamuseWord struct {
	Word string   `json:"word"`
	Tags []string `json:"tags"`
}

func (c *Client) lookupRelated(ctx context.Context, param, target string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set(param, target)
	q.Set("md", "f")
	q.Set("max", strconv.Itoa(maxResults))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.DatamuseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datamuse %s=%s: %w %d", param, target, errStatus, res.StatusCode)
	}

	var raw []datamuseWord
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("datamuse decode: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, d := range raw {
		if len(d.Word) < minLength || !alphabetic(d.Word) || frequency(d.Tags) < c.cfg.MinFrequency {
			continue
		}
		out = append(out, strings.ToLower(d.Word))
	}
	return out, nil
}

// frequency reads the "f:<n>" tag; missing or malformed tags count as 0.
func frequency(tags []string) float64 {
	for _, t := range tags {
		if v, ok := strings.CutPrefix(t, "f:"); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0
			}
			return f
		}
	}
	return 0
}

func alphabetic(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
