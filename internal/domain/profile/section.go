package profile

import "fmt"

// RecordPtr constrains P to be *T and to implement Record.
type RecordPtr[T any] interface {
	*T
	Record
}

// Section binds a collection name to its record type and URL segment.
type Section[T any, P RecordPtr[T]] struct {
	Collection Collection
	// Path is the singular URL segment, e.g. "project" for CollectionProjects.
	Path  string
	items func(p *Profile) *[]T
}

var (
	EducationSection = Section[Education, *Education]{
		Collection: CollectionEducation,
		Path:       "education",
		items:      func(p *Profile) *[]Education { return &p.Education },
	}
	ExperienceSection = Section[Experience, *Experience]{
		Collection: CollectionExperience,
		Path:       "experience",
		items:      func(p *Profile) *[]Experience { return &p.Experience },
	}
	ProjectSection = Section[Project, *Project]{
		Collection: CollectionProjects,
		Path:       "project",
		items:      func(p *Profile) *[]Project { return &p.Projects },
	}
	CertificationSection = Section[Certification, *Certification]{
		Collection: CollectionCertifications,
		Path:       "certification",
		items:      func(p *Profile) *[]Certification { return &p.Certifications },
	}
	InvolvementSection = Section[Involvement, *Involvement]{
		Collection: CollectionInvolvement,
		Path:       "involvement",
		items:      func(p *Profile) *[]Involvement { return &p.Involvement },
	}
	SkillSection = Section[Skill, *Skill]{
		Collection: CollectionSkills,
		Path:       "skill",
		items:      func(p *Profile) *[]Skill { return &p.Skills },
	}
	ContactSection = Section[Contact, *Contact]{
		Collection: CollectionContact,
		Path:       "contact",
		items:      func(p *Profile) *[]Contact { return &p.Contact },
	}
	SummarySection = Section[Summary, *Summary]{
		Collection: CollectionSummary,
		Path:       "summary",
		items:      func(p *Profile) *[]Summary { return &p.Summary },
	}
)

// ReorderPath is the plural segment used by the reorder route and as the
// key of its request body.
func (s Section[T, P]) ReorderPath() string {
	return s.Path + "s"
}

// New returns an empty record with defaults applied.
func (s Section[T, P]) New() P {
	var rec T
	ptr := P(&rec)
	ptr.ApplyDefaults()
	return ptr
}

// Items returns the section's records in p, never nil.
func (s Section[T, P]) Items(p *Profile) []T {
	items := *s.items(p)
	if items == nil {
		return []T{}
	}
	return items
}

// Find returns a copy of the record with itemID.
func (s Section[T, P]) Find(p *Profile, itemID string) (P, bool) {
	for _, item := range *s.items(p) {
		rec := item
		ptr := P(&rec)
		if ptr.GetItemID() == itemID {
			return ptr, true
		}
	}
	return nil, false
}

// ItemIDs returns the ids of the section's records in order.
func (s Section[T, P]) ItemIDs(p *Profile) []string {
	items := *s.items(p)
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = P(&items[i]).GetItemID()
	}
	return ids
}

func (s Section[T, P]) slot(p *Profile) slot {
	return typedSlot[T, P]{items: s.items(p)}
}

// slot applies untyped records to one collection of a profile.
type slot interface {
	records() []Record
	push(r Record) error
	replace(itemID string, r Record) (bool, error)
	pull(itemID string) bool
	set(records []Record) error
}

type typedSlot[T any, P RecordPtr[T]] struct {
	items *[]T
}

func (s typedSlot[T, P]) cast(r Record) (T, error) {
	ptr, ok := r.(P)
	if !ok || ptr == nil {
		var zero T
		return zero, fmt.Errorf("record %T does not belong to this collection", r)
	}
	return *ptr, nil
}

func (s typedSlot[T, P]) records() []Record {
	out := make([]Record, len(*s.items))
	for i := range *s.items {
		rec := (*s.items)[i]
		out[i] = P(&rec)
	}
	return out
}

func (s typedSlot[T, P]) push(r Record) error {
	rec, err := s.cast(r)
	if err != nil {
		return err
	}
	*s.items = append(*s.items, rec)
	return nil
}

func (s typedSlot[T, P]) replace(itemID string, r Record) (bool, error) {
	rec, err := s.cast(r)
	if err != nil {
		return false, err
	}
	for i := range *s.items {
		if P(&(*s.items)[i]).GetItemID() == itemID {
			(*s.items)[i] = rec
			return true, nil
		}
	}
	return false, nil
}

func (s typedSlot[T, P]) pull(itemID string) bool {
	kept := (*s.items)[:0:0]
	removed := false
	for i := range *s.items {
		if P(&(*s.items)[i]).GetItemID() == itemID {
			removed = true
			continue
		}
		kept = append(kept, (*s.items)[i])
	}
	*s.items = kept
	return removed
}

func (s typedSlot[T, P]) set(records []Record) error {
	out := make([]T, 0, len(records))
	for _, r := range records {
		rec, err := s.cast(r)
		if err != nil {
			return err
		}
		out = append(out, rec)
	}
	*s.items = out
	return nil
}

func (p *Profile) slot(c Collection) (slot, error) {
	switch c {
	case CollectionEducation:
		return EducationSection.slot(p), nil
	case CollectionExperience:
		return ExperienceSection.slot(p), nil
	case CollectionProjects:
		return ProjectSection.slot(p), nil
	case CollectionCertifications:
		return CertificationSection.slot(p), nil
	case CollectionInvolvement:
		return InvolvementSection.slot(p), nil
	case CollectionSkills:
		return SkillSection.slot(p), nil
	case CollectionContact:
		return ContactSection.slot(p), nil
	case CollectionSummary:
		return SummarySection.slot(p), nil
	}
	return nil, fmt.Errorf("unknown collection %q", c)
}

// Records returns the records of collection c as Record values.
func (p *Profile) Records(c Collection) ([]Record, error) {
	s, err := p.slot(c)
	if err != nil {
		return nil, err
	}
	return s.records(), nil
}

func (p *Profile) Append(c Collection, r Record) error {
	s, err := p.slot(c)
	if err != nil {
		return err
	}
	return s.push(r)
}

// Replace swaps the record with itemID in place. It reports false when no
// such record exists.
func (p *Profile) Replace(c Collection, itemID string, r Record) (bool, error) {
	s, err := p.slot(c)
	if err != nil {
		return false, err
	}
	return s.replace(itemID, r)
}

// Remove drops every record with itemID and keeps the order of the rest.
func (p *Profile) Remove(c Collection, itemID string) (bool, error) {
	s, err := p.slot(c)
	if err != nil {
		return false, err
	}
	return s.pull(itemID), nil
}

func (p *Profile) SetCollection(c Collection, records []Record) error {
	s, err := p.slot(c)
	if err != nil {
		return err
	}
	return s.set(records)
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Education = append([]Education(nil), p.Education...)
	cp.Experience = append([]Experience(nil), p.Experience...)
	cp.Projects = append([]Project(nil), p.Projects...)
	cp.Certifications = append([]Certification(nil), p.Certifications...)
	cp.Involvement = append([]Involvement(nil), p.Involvement...)
	cp.Skills = append([]Skill(nil), p.Skills...)
	cp.Contact = append([]Contact(nil), p.Contact...)
	cp.Summary = append([]Summary(nil), p.Summary...)
	if p.Image != nil {
		img := *p.Image
		cp.Image = &img
	}
	cp.Normalize()
	return &cp
}
