package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Collection string

const (
	CollectionEducation      Collection = "education"
	CollectionExperience     Collection = "experience"
	CollectionProjects       Collection = "projects"
	CollectionCertifications Collection = "certifications"
	CollectionInvolvement    Collection = "involvement"
	CollectionSkills         Collection = "skills"
	CollectionContact        Collection = "contact"
	CollectionSummary        Collection = "summary"
)

// Collections lists every embedded collection in storage order.
var Collections = []Collection{
	CollectionEducation,
	CollectionExperience,
	CollectionProjects,
	CollectionCertifications,
	CollectionInvolvement,
	CollectionSkills,
	CollectionContact,
	CollectionSummary,
}

func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

type Image struct {
	URL          string `json:"url" bson:"url"`
	PublicID     string `json:"publicId" bson:"publicId"`
	ContentType  string `json:"contentType" bson:"contentType"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty" bson:"thumbnailUrl,omitempty"`
}

// Profile is the per-user resume document. Every mutation goes through a
// single-collection Repository operation and bumps Version.
type Profile struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Involvement    []Involvement   `json:"involvement"`
	Skills         []Skill         `json:"skills"`
	Contact        []Contact       `json:"contact"`
	Summary        []Summary       `json:"summary"`
	Image          *Image          `json:"image,omitempty"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func New(userID uuid.UUID) *Profile {
	now := time.Now().UTC()
	p := &Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Normalize()
	return p
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (p *Profile) Normalize() {
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	if p.Certifications == nil {
		p.Certifications = []Certification{}
	}
	if p.Involvement == nil {
		p.Involvement = []Involvement{}
	}
	if p.Skills == nil {
		p.Skills = []Skill{}
	}
	if p.Contact == nil {
		p.Contact = []Contact{}
	}
	if p.Summary == nil {
		p.Summary = []Summary{}
	}
}

// Touch marks a successful mutation.
func (p *Profile) Touch() {
	p.Version++
	p.UpdatedAt = time.Now().UTC()
}

// Repository persists profiles. Each method is one atomic store operation on
// one collection. An expectedVersion of 0 skips the version check.
type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Profile, error)
	PushItem(ctx context.Context, userID uuid.UUID, c Collection, r Record) (*Profile, error)
	ReplaceItem(ctx context.Context, userID uuid.UUID, c Collection, itemID string, r Record, expectedVersion int64) (*Profile, error)
	// PullItem reports whether a record was removed. Removing an absent
	// item leaves the profile and its version untouched.
	PullItem(ctx context.Context, userID uuid.UUID, c Collection, itemID string) (*Profile, bool, error)
	ReplaceCollection(ctx context.Context, userID uuid.UUID, c Collection, records []Record, expectedVersion int64) (*Profile, error)
	SetImage(ctx context.Context, userID uuid.UUID, img *Image) (*Profile, error)
	// SetImageThumbnail stores the thumbnail only while the stored image is
	// still publicID, otherwise it reports an image not-found error. The
	// version is left alone since the owner did not edit anything.
	SetImageThumbnail(ctx context.Context, userID uuid.UUID, publicID, thumbnailURL string) (*Profile, error)
}
