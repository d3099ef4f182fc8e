package profile

// MonthYear is a loose calendar date as entered in the editor. The zero
// value means the date is unset.
type MonthYear struct {
	Month string `json:"month" bson:"month"`
	Year  string `json:"year" bson:"year" validate:"omitempty,numeric,len=4"`
}

func (m MonthYear) IsZero() bool {
	return m.Month == "" && m.Year == ""
}

type Flag string

const (
	FlagIncludeInResume Flag = "includeInResume"
	FlagIsPresent       Flag = "isPresent"
)

func (f Flag) Valid() bool {
	return f == FlagIncludeInResume || f == FlagIsPresent
}

// Record is one entry of an embedded collection.
type Record interface {
	GetItemID() string
	SetItemID(id string)
	ApplyDefaults()
	// Flag reports the current value of f, ok is false when the record
	// has no such field.
	Flag(f Flag) (value bool, ok bool)
	SetFlag(f Flag, value bool) bool
}

type Education struct {
	ItemID          string    `json:"itemId" bson:"itemId"`
	University      string    `json:"university" bson:"university" validate:"required"`
	Degree          string    `json:"degree" bson:"degree" validate:"required"`
	Major           string    `json:"major" bson:"major"`
	CGPA            string    `json:"cgpa" bson:"cgpa"`
	StartDate       MonthYear `json:"startDate" bson:"startDate"`
	EndDate         MonthYear `json:"endDate" bson:"endDate"`
	UniversityURL   string    `json:"universityUrl" bson:"universityUrl"`
	IncludeInResume bool      `json:"includeInResume" bson:"includeInResume"`
	IsPresent       bool      `json:"isPresent" bson:"isPresent"`
}

type Experience struct {
	ItemID          string    `json:"itemId" bson:"itemId"`
	JobTitle        string    `json:"jobTitle" bson:"jobTitle" validate:"required"`
	Company         string    `json:"company" bson:"company" validate:"required"`
	Location        string    `json:"location" bson:"location"`
	StartDate       MonthYear `json:"startDate" bson:"startDate"`
	EndDate         MonthYear `json:"endDate" bson:"endDate"`
	Description     string    `json:"description" bson:"description"`
	IncludeInResume bool      `json:"includeInResume" bson:"includeInResume"`
	IsPresent       bool      `json:"isPresent" bson:"isPresent"`
}

// Project.Skills is free text; some editors use it for the organization.
type Project struct {
	ItemID          string    `json:"itemId" bson:"itemId"`
	Name            string    `json:"name" bson:"name" validate:"required"`
	Skills          string    `json:"skills" bson:"skills"`
	StartDate       MonthYear `json:"startDate" bson:"startDate"`
	EndDate         MonthYear `json:"endDate" bson:"endDate"`
	Description     string    `json:"description" bson:"description"`
	IncludeInResume bool      `json:"includeInResume" bson:"includeInResume"`
	IsPresent       bool      `json:"isPresent" bson:"isPresent"`
}

type Certification struct {
	ItemID          string    `json:"itemId" bson:"itemId"`
	Name            string    `json:"name" bson:"name" validate:"required"`
	IssuedBy        string    `json:"issuedBy" bson:"issuedBy" validate:"required"`
	IssuedDate      MonthYear `json:"issuedDate" bson:"issuedDate"`
	ExpirationDate  MonthYear `json:"expirationDate" bson:"expirationDate"`
	URL             string    `json:"url" bson:"url"`
	IncludeInResume bool      `json:"includeInResume" bson:"includeInResume"`
}

type Involvement struct {
	ItemID          string    `json:"itemId" bson:"itemId"`
	Organization    string    `json:"organization" bson:"organization" validate:"required"`
	Role            string    `json:"role" bson:"role" validate:"required"`
	StartDate       MonthYear `json:"startDate" bson:"startDate"`
	EndDate         MonthYear `json:"endDate" bson:"endDate"`
	Description     string    `json:"description" bson:"description"`
	IncludeInResume bool      `json:"includeInResume" bson:"includeInResume"`
	IsPresent       bool      `json:"isPresent" bson:"isPresent"`
}

type Skill struct {
	ItemID          string `json:"itemId" bson:"itemId"`
	Domain          string `json:"domain" bson:"domain" validate:"required"`
	Name            string `json:"name" bson:"name" validate:"required"`
	IncludeInResume bool   `json:"includeInResume" bson:"includeInResume"`
}

type Contact struct {
	ItemID      string `json:"itemId" bson:"itemId"`
	Name        string `json:"name" bson:"name" validate:"required"`
	Email       string `json:"email" bson:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" bson:"phoneNumber"`
	LinkedIn    string `json:"linkedIn" bson:"linkedIn"`
}

type Summary struct {
	ItemID  string `json:"itemId" bson:"itemId"`
	Content string `json:"content" bson:"content" validate:"required"`
}

func (r *Education) GetItemID() string       { return r.ItemID }
func (r *Experience) GetItemID() string      { return r.ItemID }
func (r *Project) GetItemID() string         { return r.ItemID }
func (r *Certification) GetItemID() string   { return r.ItemID }
func (r *Involvement) GetItemID() string     { return r.ItemID }
func (r *Skill) GetItemID() string           { return r.ItemID }
func (r *Contact) GetItemID() string         { return r.ItemID }
func (r *Summary) GetItemID() string         { return r.ItemID }
func (r *Education) SetItemID(id string)     { r.ItemID = id }
func (r *Experience) SetItemID(id string)    { r.ItemID = id }
func (r *Project) SetItemID(id string)       { r.ItemID = id }
func (r *Certification) SetItemID(id string) { r.ItemID = id }
func (r *Involvement) SetItemID(id string)   { r.ItemID = id }
func (r *Skill) SetItemID(id string)         { r.ItemID = id }
func (r *Contact) SetItemID(id string)       { r.ItemID = id }
func (r *Summary) SetItemID(id string)       { r.ItemID = id }

func (r *Education) ApplyDefaults()     { r.IncludeInResume = true }
func (r *Experience) ApplyDefaults()    { r.IncludeInResume = true }
func (r *Project) ApplyDefaults()       { r.IncludeInResume = true }
func (r *Certification) ApplyDefaults() { r.IncludeInResume = true }
func (r *Involvement) ApplyDefaults()   { r.IncludeInResume = true }
func (r *Skill) ApplyDefaults()         { r.IncludeInResume = true }
func (r *Contact) ApplyDefaults()       {}
func (r *Summary) ApplyDefaults()       {}

func (r *Education) Flag(f Flag) (bool, bool) {
	return datedFlag(f, r.IncludeInResume, r.IsPresent)
}

func (r *Education) SetFlag(f Flag, v bool) bool {
	return setDatedFlag(f, v, &r.IncludeInResume, &r.IsPresent)
}

func (r *Experience) Flag(f Flag) (bool, bool) {
	return datedFlag(f, r.IncludeInResume, r.IsPresent)
}

func (r *Experience) SetFlag(f Flag, v bool) bool {
	return setDatedFlag(f, v, &r.IncludeInResume, &r.IsPresent)
}

func (r *Project) Flag(f Flag) (bool, bool) {
	return datedFlag(f, r.IncludeInResume, r.IsPresent)
}

func (r *Project) SetFlag(f Flag, v bool) bool {
	return setDatedFlag(f, v, &r.IncludeInResume, &r.IsPresent)
}

func (r *Involvement) Flag(f Flag) (bool, bool) {
	return datedFlag(f, r.IncludeInResume, r.IsPresent)
}

func (r *Involvement) SetFlag(f Flag, v bool) bool {
	return setDatedFlag(f, v, &r.IncludeInResume, &r.IsPresent)
}

func (r *Certification) Flag(f Flag) (bool, bool) {
	if f == FlagIncludeInResume {
		return r.IncludeInResume, true
	}
	return false, false
}

func (r *Certification) SetFlag(f Flag, v bool) bool {
	if f == FlagIncludeInResume {
		r.IncludeInResume = v
		return true
	}
	return false
}

func (r *Skill) Flag(f Flag) (bool, bool) {
	if f == FlagIncludeInResume {
		return r.IncludeInResume, true
	}
	return false, false
}

func (r *Skill) SetFlag(f Flag, v bool) bool {
	if f == FlagIncludeInResume {
		r.IncludeInResume = v
		return true
	}
	return false
}

func (r *Contact) Flag(Flag) (bool, bool)  { return false, false }
func (r *Contact) SetFlag(Flag, bool) bool { return false }
func (r *Summary) Flag(Flag) (bool, bool)  { return false, false }
func (r *Summary) SetFlag(Flag, bool) bool { return false }

func datedFlag(f Flag, include, present bool) (bool, bool) {
	switch f {
	case FlagIncludeInResume:
		return include, true
	case FlagIsPresent:
		return present, true
	}
	return false, false
}

// setDatedFlag leaves the stored end date alone when isPresent is cleared.
func setDatedFlag(f Flag, v bool, include, present *bool) bool {
	switch f {
	case FlagIncludeInResume:
		*include = v
		return true
	case FlagIsPresent:
		*present = v
		return true
	}
	return false
}
