package report

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// transitions lists, for each target state, the states it may be entered from.
var transitions = map[Status][]Status{
	StatusProcessing: {StatusPending},
	StatusCompleted:  {StatusProcessing},
	StatusFailed:     {StatusPending, StatusProcessing},
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, from := range transitions[next] {
		if from == s {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ReportJob tracks one asynchronous CSV generation request.
// FileName, FilePath and FileSize are set iff Status is COMPLETED; Error iff FAILED.
type ReportJob struct {
	ID        string         `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Status    Status         `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Params    datatypes.JSON `gorm:"column:params" json:"params"`
	FileName  string         `gorm:"column:fileName;type:varchar(255);not null;default:''" json:"fileName"`
	FilePath  string         `gorm:"column:filePath;type:varchar(1024);not null;default:''" json:"filePath"`
	FileSize  *int64         `gorm:"column:fileSize" json:"fileSize"`
	Error     *string        `gorm:"column:error;type:text" json:"error"`
	OwnerID   string         `gorm:"column:user_created;type:varchar(64);not null;index" json:"user_created"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ReportJob) TableName() string {
	return "csv_jobs"
}

// ReportFile describes a finished CSV on disk.
type ReportFile struct {
	Name string
	Path string
	Size int64
}

// WorkOrderReportParams is the body of a work-order report request.
type WorkOrderReportParams struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

const dateLayout = "2006-01-02"

// WorkOrder is a row of the legacy service_workorder table. Money columns are Decimal so
// values are never rounded through a float.
type WorkOrder struct {
	Oid                     string     `gorm:"column:Oid;type:varchar(64);primaryKey"`
	WorkOrderNo             string     `gorm:"column:WorkOrderNo;type:varchar(30);index"`
	WorkOrderDate           time.Time  `gorm:"column:WorkOrderDate;index"`
	BookingNo               string     `gorm:"column:BookingNo;type:varchar(30)"`
	Branch                  string     `gorm:"column:Branch;type:varchar(20)"`
	WorkOrderStatus         int        `gorm:"column:WorkOrderStatus"`
	ServiceAdvisor          *string    `gorm:"column:ServiceAdvisor;type:varchar(20)"`
	TotalPartWithholdingTax *Decimal   `gorm:"column:TotalPartWithholdingTax;precision:18;scale:2"`
	VehicleUnit             string     `gorm:"column:VehicleUnit;type:varchar(64)"`
	RepairType              int64      `gorm:"column:RepairType"`
	DamageCategory          int        `gorm:"column:DamageCategory"`
	ServiceStartOn          *time.Time `gorm:"column:ServiceStartOn"`
	GrossJobSales           Decimal    `gorm:"column:GrossJobSales;precision:18;scale:2"`
	GrossPartSales          Decimal    `gorm:"column:GrossPartSales;precision:18;scale:2"`
	TotalPartDiscount       Decimal    `gorm:"column:TotalPartDiscount;precision:18;scale:2"`
	TotalPartProgram        Decimal    `gorm:"column:TotalPartProgram;precision:18;scale:2"`
	TotalPartVAT            Decimal    `gorm:"column:TotalPartVAT;precision:18;scale:2"`
	TotalJobDiscount        Decimal    `gorm:"column:TotalJobDiscount;precision:18;scale:2"`
	TotalJobProgram         Decimal    `gorm:"column:TotalJobProgram;precision:18;scale:2"`
	TotalJobVAT             Decimal    `gorm:"column:TotalJobVAT;precision:18;scale:2"`
	TotalJob                Decimal    `gorm:"column:TotalJob;precision:18;scale:2"`
	TotalPart               Decimal    `gorm:"column:TotalPart;precision:18;scale:2"`
	TotalInvoice            Decimal    `gorm:"column:TotalInvoice;precision:18;scale:2"`
	RepairSubType           string     `gorm:"column:RepairSubType;type:varchar(30)"`
	SPKReference            string     `gorm:"column:SPKReference;type:varchar(30)"`
	MobileServiceType       *int64     `gorm:"column:MobileServiceType"`
}

func (WorkOrder) TableName() string { return "service_workorder" }

type RepairType struct {
	RepairTypeId          int64  `gorm:"column:RepairTypeId;primaryKey;autoIncrement:false"`
	RepairTypeDescription string `gorm:"column:RepairTypeDescription;type:varchar(100)"`
	Branch                string `gorm:"column:Branch;type:varchar(20)"`
}

func (RepairType) TableName() string { return "service_repairtype" }

type MobileServiceType struct {
	Oid         int64  `gorm:"column:Oid;primaryKey;autoIncrement"`
	Description string `gorm:"column:Description;type:varchar(100)"`
}

func (MobileServiceType) TableName() string { return "service_mobileservicetype" }

// SourceModels are the service tables the work-order export reads from.
func SourceModels() []any {
	return []any{&RepairType{}, &MobileServiceType{}, &WorkOrder{}}
}
