// Package resume builds the printable view of a profile: records hidden from
// the resume are dropped, collection order is kept and free text markup is
// parsed into segments.
package resume

import (
	"strconv"
	"strings"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
)

const PresentLabel = "Present"

type Segment struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

type Line struct {
	Bullet   bool      `json:"bullet"`
	Segments []Segment `json:"segments"`
}

type Entry struct {
	ItemID    string `json:"itemId"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Location  string `json:"location,omitempty"`
	DateRange string `json:"dateRange,omitempty"`
	URL       string `json:"url,omitempty"`
	Lines     []Line `json:"lines,omitempty"`
}

type SkillGroup struct {
	Domain string   `json:"domain"`
	Names  []string `json:"names"`
}

type Contact struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	LinkedIn    string `json:"linkedIn,omitempty"`
}

type Resume struct {
	Contact        *Contact     `json:"contact,omitempty"`
	Summary        []Line       `json:"summary,omitempty"`
	Education      []Entry      `json:"education"`
	Experience     []Entry      `json:"experience"`
	Projects       []Entry      `json:"projects"`
	Certifications []Entry      `json:"certifications"`
	Involvement    []Entry      `json:"involvement"`
	Skills         []SkillGroup `json:"skills"`
	PhotoURL       string       `json:"photoUrl,omitempty"`
}

func Build(p *profile.Profile) *Resume {
	r := &Resume{
		Education:      []Entry{},
		Experience:     []Entry{},
		Projects:       []Entry{},
		Certifications: []Entry{},
		Involvement:    []Entry{},
		Skills:         []SkillGroup{},
	}

	// Contact and summary have zero or one active entry; the first wins.
	if len(p.Contact) > 0 {
		c := p.Contact[0]
		r.Contact = &Contact{Name: c.Name, Email: c.Email, PhoneNumber: c.PhoneNumber, LinkedIn: c.LinkedIn}
	}
	if len(p.Summary) > 0 {
		r.Summary = ParseMarkup(p.Summary[0].Content)
	}
	if p.Image != nil {
		r.PhotoURL = p.Image.URL
		if p.Image.ThumbnailURL != "" {
			r.PhotoURL = p.Image.ThumbnailURL
		}
	}

	for _, e := range p.Education {
		if !e.IncludeInResume {
			continue
		}
		subtitle := e.Degree
		if e.Major != "" {
			subtitle += ", " + e.Major
		}
		if e.CGPA != "" {
			subtitle += " (CGPA " + e.CGPA + ")"
		}
		r.Education = append(r.Education, Entry{
			ItemID:    e.ItemID,
			Title:     e.University,
			Subtitle:  subtitle,
			DateRange: FormatRange(e.StartDate, e.EndDate, e.IsPresent),
			URL:       e.UniversityURL,
		})
	}

	for _, e := range p.Experience {
		if !e.IncludeInResume {
			continue
		}
		r.Experience = append(r.Experience, Entry{
			ItemID:    e.ItemID,
			Title:     e.JobTitle,
			Subtitle:  e.Company,
			Location:  e.Location,
			DateRange: FormatRange(e.StartDate, e.EndDate, e.IsPresent),
			Lines:     ParseMarkup(e.Description),
		})
	}

	for _, e := range p.Projects {
		if !e.IncludeInResume {
			continue
		}
		r.Projects = append(r.Projects, Entry{
			ItemID:    e.ItemID,
			Title:     e.Name,
			Subtitle:  e.Skills,
			DateRange: FormatRange(e.StartDate, e.EndDate, e.IsPresent),
			Lines:     ParseMarkup(e.Description),
		})
	}

	for _, e := range p.Certifications {
		if !e.IncludeInResume {
			continue
		}
		r.Certifications = append(r.Certifications, Entry{
			ItemID:    e.ItemID,
			Title:     e.Name,
			Subtitle:  e.IssuedBy,
			DateRange: FormatRange(e.IssuedDate, e.ExpirationDate, false),
			URL:       e.URL,
		})
	}

	for _, e := range p.Involvement {
		if !e.IncludeInResume {
			continue
		}
		r.Involvement = append(r.Involvement, Entry{
			ItemID:    e.ItemID,
			Title:     e.Role,
			Subtitle:  e.Organization,
			DateRange: FormatRange(e.StartDate, e.EndDate, e.IsPresent),
			Lines:     ParseMarkup(e.Description),
		})
	}

	groups := map[string]int{}
	for _, s := range p.Skills {
		if !s.IncludeInResume {
			continue
		}
		idx, ok := groups[s.Domain]
		if !ok {
			idx = len(r.Skills)
			groups[s.Domain] = idx
			r.Skills = append(r.Skills, SkillGroup{Domain: s.Domain})
		}
		r.Skills[idx].Names = append(r.Skills[idx].Names, s.Name)
	}

	return r
}

// FormatRange renders a date range. An ongoing range ends with "Present"
// whatever the stored end date; an unset end date renders start only.
func FormatRange(start, end profile.MonthYear, present bool) string {
	from := FormatMonthYear(start)
	switch {
	case present && from == "":
		return PresentLabel
	case present:
		return from + " - " + PresentLabel
	}

	to := FormatMonthYear(end)
	switch {
	case from == "":
		return to
	case to == "":
		return from
	}
	return from + " - " + to
}

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatMonthYear renders "Jan 2020". Numeric and full month names are
// shortened; anything else is kept as entered.
func FormatMonthYear(m profile.MonthYear) string {
	month := strings.TrimSpace(m.Month)
	if n, err := strconv.Atoi(month); err == nil && n >= 1 && n <= 12 {
		month = monthNames[n-1]
	} else if len(month) > 3 {
		for _, name := range monthNames {
			if strings.EqualFold(month[:3], name) {
				month = name
				break
			}
		}
	}
	return strings.TrimSpace(month + " " + strings.TrimSpace(m.Year))
}

// ParseMarkup splits free text into lines. Lines starting with a single "*"
// become bullets and "**text**" spans become bold segments.
func ParseMarkup(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		bullet := false
		if strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "**") {
			bullet = true
			s = strings.TrimSpace(s[1:])
		} else if strings.HasPrefix(s, "***") {
			bullet = true
			s = strings.TrimSpace(s[1:])
		}
		lines = append(lines, Line{Bullet: bullet, Segments: parseBold(s)})
	}
	return lines
}

func parseBold(s string) []Segment {
	parts := strings.Split(s, "**")
	// An unmatched trailing marker is kept as literal text.
	if len(parts)%2 == 0 {
		last := len(parts) - 1
		parts[last-1] = parts[last-1] + "**" + parts[last]
		parts = parts[:last]
	}

	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		segments = append(segments, Segment{Text: part, Bold: i%2 == 1})
	}
	return segments
}
