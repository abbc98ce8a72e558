package content

import (
	"github.com/aTrapDeer/portfolio-backend/internal/store"

	"gorm.io/datatypes"
)

// BioID is the fixed key of the single bio record.
const BioID = "profile"

type Bio struct {
	store.Base
	Name         string                      `json:"name" gorm:"not null" validate:"required,max=100"`
	Roles        datatypes.JSONSlice[string] `json:"roles" validate:"required,min=1,dive,required"`
	Description  string                      `json:"description" validate:"required,min=10,max=1000"`
	Github       string                      `json:"github" validate:"omitempty,url"`
	Resume       string                      `json:"resume" validate:"omitempty,url"`
	LinkedIn     string                      `json:"linkedin" validate:"omitempty,url"`
	Twitter      string                      `json:"twitter" validate:"omitempty,url"`
	Insta        string                      `json:"insta" validate:"omitempty,url"`
	Facebook     string                      `json:"facebook" validate:"omitempty,url"`
	ProfileImage string                      `json:"profileImage" validate:"omitempty,url"`
}

func (Bio) TableName() string {
	return "bio"
}

type SkillItem struct {
	Name       string     `json:"name" validate:"required,max=50"`
	Image      string     `json:"image" validate:"required,url"`
	Percentage Percentage `json:"percentage" validate:"min=0,max=100"`
}

// Skill is a category of skills, e.g. "Frontend".
type Skill struct {
	store.Base
	store.Sequence
	Title  string                         `json:"title" gorm:"not null" validate:"required,max=100"`
	Skills datatypes.JSONSlice[SkillItem] `json:"skills" validate:"required,min=1,dive"`
}

type Experience struct {
	store.Base
	store.Sequence
	Role    string                      `json:"role" gorm:"not null" validate:"required,max=200"`
	Company string                      `json:"company" gorm:"not null" validate:"required,max=200"`
	Date    string                      `json:"date" validate:"required"`
	Desc    string                      `json:"desc" validate:"max=2000"`
	Skills  datatypes.JSONSlice[string] `json:"skills" validate:"omitempty,dive,required"`
	Doc     string                      `json:"doc" validate:"omitempty,url"`
	Image   string                      `json:"image" validate:"required,url"`
}

type Education struct {
	store.Base
	store.Sequence
	School string `json:"school" gorm:"not null" validate:"required,max=200"`
	Degree string `json:"degree" gorm:"not null" validate:"required,max=200"`
	Date   string `json:"date" validate:"required"`
	Grade  string `json:"grade" validate:"max=50"`
	Desc   string `json:"desc" validate:"max=1000"`
	Image  string `json:"image" validate:"required,url"`
}

type Member struct {
	Name     string `json:"name" validate:"required,max=100"`
	Img      string `json:"img" validate:"omitempty,url"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	Github   string `json:"github" validate:"omitempty,url"`
}

type Project struct {
	store.Base
	store.Sequence
	Title       string                      `json:"title" gorm:"not null" validate:"required,max=200"`
	Date        string                      `json:"date" validate:"required"`
	Description string                      `json:"description" validate:"required,min=10,max=2000"`
	Image       string                      `json:"image" validate:"required,url"`
	Tags        datatypes.JSONSlice[string] `json:"tags" validate:"required,min=1,dive,required"`
	Category    string                      `json:"category" validate:"required"`
	Github      string                      `json:"github" validate:"omitempty,url"`
	Webapp      string                      `json:"webapp" validate:"omitempty,url"`
	Member      datatypes.JSONSlice[Member] `json:"member" validate:"omitempty,dive"`
}

// Models lists every content table for migrations.
func Models() []any {
	return []any{&Bio{}, &Skill{}, &Experience{}, &Education{}, &Project{}}
}
