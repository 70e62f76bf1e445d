// Package news fetches current top headlines.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"crisis-assist/internal/config"
	"crisis-assist/internal/fault"
)

// Article is a headline with its summary, both as plain text.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type headlinesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles *[]struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	} `json:"articles"`
}

// Fetcher reads the provider's top-headlines feed for one country.
type Fetcher struct {
	httpClient *http.Client
	url        string
	country    string
	apiKey     string
	logger     *zap.Logger
}

func NewFetcher(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	return &Fetcher{
		httpClient: httpClient,
		url:        cfg.News.URL,
		country:    cfg.News.Country,
		apiKey:     cfg.NewsKey,
		logger:     logger.Named("news"),
	}
}

// FetchHeadlines returns the articles that have both a title and a
// description, in provider order. Failures are logged and yield no articles.
func (f *Fetcher) FetchHeadlines(ctx context.Context) []Article {
	articles, err := f.fetch(ctx)
	if err != nil {
		f.logger.Warn("unable to fetch news", zap.Error(err))
		return []Article{}
	}
	return articles
}

func (f *Fetcher) fetch(ctx context.Context) ([]Article, error) {
	const op = "top headlines"

	u, err := url.Parse(f.url)
	if err != nil {
		return nil, fault.Network(op, err)
	}
	q := u.Query()
	q.Set("country", f.country)
	q.Set("apiKey", f.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fault.Network(op, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fault.Network(op, err)
	}
	defer resp.Body.Close()
	if err := fault.Status(op, resp); err != nil {
		return nil, err
	}

	var out headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fault.Format(op, err)
	}
	if out.Status != "ok" {
		return nil, fault.Format(op, fmt.Errorf("status %q: %s %s", out.Status, out.Code, out.Message))
	}
	if out.Articles == nil {
		return nil, fault.Format(op, errors.New("'articles' not found in response"))
	}

	articles := make([]Article, 0, len(*out.Articles))
	for _, a := range *out.Articles {
		title, desc := plainText(a.Title), plainText(a.Description)
		if title == "" || desc == "" {
			continue
		}
		articles = append(articles, Article{Title: title, Description: desc})
	}
	return articles, nil
}

// plainText strips any markup the provider left in a field.
func plainText(s *string) string {
	if s == nil {
		return ""
	}
	if !strings.ContainsAny(*s, "<&") {
		return strings.TrimSpace(*s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(*s))
	if err != nil {
		return strings.TrimSpace(*s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Filter keeps articles whose title or description contains term, ignoring
// case. An empty term returns articles unchanged.
func Filter(articles []Article, term string) []Article {
	if term == "" {
		return articles
	}
	needle := strings.ToLower(term)
	filtered := []Article{}
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.Description), needle) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
