package devpost

import (
	"context"
	"strings"

	"scoreahack/pkg/models"
)

const (
	// DefaultMaxResults caps the candidates returned by Search
	DefaultMaxResults = 20
	// DefaultPageLimit is the exclusive page bound; pages 1 through DefaultPageLimit-1 are requested
	DefaultPageLimit = 10
)

type searchResponse struct {
	Software []searchResult `json:"software"`
}

type searchResult struct {
	Slug    string              `json:"slug"`
	Photo   string              `json:"photo"`
	Name    string              `json:"name"`
	Tagline string              `json:"tagline"`
	Members []models.TeamMember `json:"members"`
	Tags    []string            `json:"tags"`
}

func (r searchResult) candidate() models.SearchCandidate {
	return models.SearchCandidate{
		ID:      r.Slug,
		Photo:   r.Photo,
		Title:   strings.ReplaceAll(r.Name, "&amp;", "&"),
		Tagline: r.Tagline,
		Members: r.Members,
		Tags:    r.Tags,
	}
}

// SearchPage fetches a single page of search results
func (c *Client) SearchPage(ctx context.Context, query string, page int) ([]models.SearchCandidate, error) {
	var resp searchResponse
	if err := c.GetJSON(ctx, SearchURL(c.baseURL, query, page), &resp); err != nil {
		return nil, err
	}

	out := make([]models.SearchCandidate, 0, len(resp.Software))
	for _, r := range resp.Software {
		out = append(out, r.candidate())
	}
	return out, nil
}

// Search walks result pages from page 1 until enough candidates are
// collected, the page bound is reached, or a page comes back empty. A failed
// page is logged and ends the walk like an empty one. At most MaxResults
// candidates are returned, in endpoint order.
func (c *Client) Search(ctx context.Context, query string) []models.SearchCandidate {
	maxResults := c.search.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	pageLimit := c.search.PageLimit
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}

	log := c.logger.WithField("query", query)
	candidates := []models.SearchCandidate{}

	for page := 1; page < pageLimit && len(candidates) < maxResults; page++ {
		results, err := c.SearchPage(ctx, query, page)
		if err != nil {
			log.WithError(err).WarnWithFields("search page failed", map[string]interface{}{"page": page})
			break
		}
		if len(results) == 0 {
			break
		}
		candidates = append(candidates, results...)
	}

	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	log.DebugWithFields("search completed", map[string]interface{}{"candidates": len(candidates)})
	return candidates
}
