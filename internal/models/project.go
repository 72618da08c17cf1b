package models

import "gorm.io/datatypes"

type Project struct {
	BaseModel

	Name        string         `gorm:"size:200;not null"`
	Description string
	Status      string         `gorm:"size:20;not null;index"`
	StartDate   datatypes.Date `gorm:"not null"`
	EndDate     *datatypes.Date
	OwnerID     uint `gorm:"not null;index"`

	// Relationships
	Owner              *User               `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	ProjectMemberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tasks              []Task              `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// MemberIDs returns the owner followed by every stored member.
// ProjectMemberships must be preloaded.
func (p Project) MemberIDs() []uint {
	ids := make([]uint, 0, len(p.ProjectMemberships)+1)
	ids = append(ids, p.OwnerID)
	for _, m := range p.ProjectMemberships {
		ids = append(ids, m.UserID)
	}
	return ids
}
