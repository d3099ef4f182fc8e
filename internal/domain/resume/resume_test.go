package resume

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/resume-builder/internal/domain/profile"
)

func TestFormatRange(t *testing.T) {
	jan20 := profile.MonthYear{Month: "January", Year: "2020"}
	mar22 := profile.MonthYear{Month: "03", Year: "2022"}

	tests := []struct {
		name       string
		start, end profile.MonthYear
		present    bool
		want       string
	}{
		{"closed range", jan20, mar22, false, "Jan 2020 - Mar 2022"},
		{"present ignores stored end", jan20, mar22, true, "Jan 2020 - Present"},
		{"present without start", profile.MonthYear{}, profile.MonthYear{}, true, "Present"},
		{"unset end renders start only", jan20, profile.MonthYear{}, false, "Jan 2020"},
		{"year only", profile.MonthYear{Year: "2019"}, profile.MonthYear{Year: "2021"}, false, "2019 - 2021"},
		{"nothing set", profile.MonthYear{}, profile.MonthYear{}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRange(tt.start, tt.end, tt.present))
		})
	}
}

func TestParseMarkup(t *testing.T) {
	lines := ParseMarkup("Built the **billing** pipeline\n* Cut latency by **40%**\n\n*   Led a team of 3\nunclosed **bold")

	require.Len(t, lines, 4)

	assert.False(t, lines[0].Bullet)
	assert.Equal(t, []Segment{{Text: "Built the "}, {Text: "billing", Bold: true}, {Text: " pipeline"}}, lines[0].Segments)

	assert.True(t, lines[1].Bullet)
	assert.Equal(t, []Segment{{Text: "Cut latency by "}, {Text: "40%", Bold: true}}, lines[1].Segments)

	assert.True(t, lines[2].Bullet)
	assert.Equal(t, []Segment{{Text: "Led a team of 3"}}, lines[2].Segments)

	assert.Equal(t, []Segment{{Text: "unclosed **bold"}}, lines[3].Segments)
}

func TestParseMarkup_BoldLineIsNotBullet(t *testing.T) {
	lines := ParseMarkup("**Highlights**")
	require.Len(t, lines, 1)
	assert.False(t, lines[0].Bullet)
	assert.Equal(t, []Segment{{Text: "Highlights", Bold: true}}, lines[0].Segments)
}

func TestBuild(t *testing.T) {
	p := profile.New(uuid.New())
	p.Experience = []profile.Experience{
		{ItemID: "e1", JobTitle: "Engineer", Company: "Acme", IncludeInResume: true, IsPresent: true,
			StartDate: profile.MonthYear{Month: "Jan", Year: "2020"}, EndDate: profile.MonthYear{Month: "Feb", Year: "2021"}},
		{ItemID: "e2", JobTitle: "Intern", Company: "Hidden", IncludeInResume: false},
		{ItemID: "e3", JobTitle: "Junior", Company: "Beta", IncludeInResume: true,
			StartDate: profile.MonthYear{Month: "Jun", Year: "2018"}},
	}
	p.Skills = []profile.Skill{
		{ItemID: "s1", Domain: "Languages", Name: "Go", IncludeInResume: true},
		{ItemID: "s2", Domain: "Tools", Name: "Docker", IncludeInResume: true},
		{ItemID: "s3", Domain: "Languages", Name: "Python", IncludeInResume: true},
		{ItemID: "s4", Domain: "Languages", Name: "Perl", IncludeInResume: false},
	}
	p.Contact = []profile.Contact{{ItemID: "c1", Name: "Ada", Email: "ada@example.com"}}
	p.Summary = []profile.Summary{{ItemID: "m1", Content: "Backend engineer"}}

	r := Build(p)

	require.Len(t, r.Experience, 2)
	assert.Equal(t, "e1", r.Experience[0].ItemID)
	assert.Equal(t, "Jan 2020 - Present", r.Experience[0].DateRange)
	assert.Equal(t, "e3", r.Experience[1].ItemID)
	assert.Equal(t, "Jun 2018", r.Experience[1].DateRange)

	assert.Equal(t, []SkillGroup{
		{Domain: "Languages", Names: []string{"Go", "Python"}},
		{Domain: "Tools", Names: []string{"Docker"}},
	}, r.Skills)

	require.NotNil(t, r.Contact)
	assert.Equal(t, "Ada", r.Contact.Name)
	require.Len(t, r.Summary, 1)
	assert.Empty(t, r.Education)
}
