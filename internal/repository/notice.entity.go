package repository

import (
	"time"

	"github.com/rumahkitanet/wa-notify/internal/model"
)

type NoticeEntity struct {
	ID           int64      `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Title        string     `db:"title"         gorm:"column:title;not null"`
	Message      string     `db:"message"       gorm:"column:message;not null"`
	Type         string     `db:"type"          gorm:"column:type;default:gangguan"`
	Severity     string     `db:"severity"      gorm:"column:severity;default:medium"`
	IsMass       bool       `db:"is_mass"       gorm:"column:is_mass;default:false"`
	AffectedArea string     `db:"affected_area" gorm:"column:affected_area"`
	AffectedODP  string     `db:"affected_odp"  gorm:"column:affected_odp"`
	StartTime    *time.Time `db:"start_time"    gorm:"column:start_time"`
	EndTime      *time.Time `db:"end_time"      gorm:"column:end_time"`
	IsActive     bool       `db:"is_active"     gorm:"column:is_active;default:true;index"`
	CreatedBy    *int64     `db:"created_by"    gorm:"column:created_by"`
	CreatedAt    time.Time  `db:"created_at"    gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt    time.Time  `db:"updated_at"    gorm:"column:updated_at;autoUpdateTime"`
}

func (NoticeEntity) TableName() string {
	return "network_notices"
}

func toNoticeModel(e *NoticeEntity) *model.NetworkNotice {
	if e == nil {
		return nil
	}
	return &model.NetworkNotice{
		ID:           e.ID,
		Title:        e.Title,
		Message:      e.Message,
		Type:         model.NoticeType(e.Type),
		Severity:     model.NoticeSeverity(e.Severity),
		IsMass:       e.IsMass,
		AffectedArea: e.AffectedArea,
		AffectedODP:  e.AffectedODP,
		StartTime:    e.StartTime,
		EndTime:      e.EndTime,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
	}
}

func toNoticeModels(entities []*NoticeEntity) []*model.NetworkNotice {
	if entities == nil {
		return nil
	}
	models := make([]*model.NetworkNotice, len(entities))
	for i, e := range entities {
		models[i] = toNoticeModel(e)
	}
	return models
}
