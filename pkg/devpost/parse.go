package devpost

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"scoreahack/pkg/logger"
	"scoreahack/pkg/models"
)

// Page selectors. Each field is extracted independently; a missing section
// leaves its field empty.
const (
	selTitle       = "#app-title"
	selTagline     = "#software-header > div:nth-child(1) > div > p"
	selImages      = ".software_photo_image"
	selGallery     = "#gallery"
	selBuiltWith   = "#built-with > ul"
	selLinks       = ".app-links ul"
	selTeam        = "#app-team ul"
	selTeamMember  = ".software-team-member"
	selProfileLink = ".user-profile-link"
)

// The renderer escapes quotes that browsers leave alone.
var htmlTextReplacer = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)

// ParseProject extracts a project record from page HTML
func ParseProject(id string, page []byte, text *TextConverter, domain string, log logger.Logger) (*models.Project, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	if text == nil {
		text = NewTextConverter()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	project := &models.Project{
		ID:      id,
		Title:   htmlTextReplacer.Replace(innerHTML(doc.Find(selTitle))),
		Tagline: innerHTML(doc.Find(selTagline)),
		Images:  []string{},
		Tags:    []string{},
		Links:   []string{},
		Members: []models.TeamMember{},
	}

	doc.Find(selImages).Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			project.Images = append(project.Images, src)
		}
	})

	if gallery := doc.Find(selGallery).First(); gallery.Length() > 0 {
		if descHTML, err := gallery.Next().Html(); err == nil {
			project.Description = text.Convert(descHTML, domain)
		}
	}

	doc.Find(selBuiltWith).ChildrenFiltered("li").Each(func(_ int, s *goquery.Selection) {
		project.Tags = append(project.Tags, s.Find("span").Text())
	})

	doc.Find(selLinks).ChildrenFiltered("li").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").Attr("href")
		u, err := url.Parse(href)
		if err != nil || u.Scheme == "" || u.Host == "" {
			log.WarnWithFields("invalid project link", map[string]interface{}{"href": href})
			return
		}
		if u.Hostname() == "github.com" {
			project.GitHubLink = href
			return
		}
		project.Links = append(project.Links, href)
	})

	doc.Find(selTeam).ChildrenFiltered(selTeamMember).Each(func(_ int, s *goquery.Selection) {
		var member models.TeamMember
		if src, ok := s.Find(selProfileLink + " img").Attr("src"); ok && src != "" {
			member.Image = &src
		}
		if name := strings.TrimSpace(s.Find(selProfileLink).Text()); name != "" {
			member.Name = &name
		}
		project.Members = append(project.Members, member)
	})

	return project, nil
}

// innerHTML returns the trimmed inner HTML of the first match, or "".
func innerHTML(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	h, err := s.First().Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}
