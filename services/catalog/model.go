package catalog

import "time"

// Models over the legacy workshop schema. Column and JSON names keep the legacy spelling.

type VehicleBrand struct {
	Oid       string `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	BrandName string `gorm:"column:BrandName;type:varchar(100)" json:"BrandName"`
}

func (VehicleBrand) TableName() string { return "sales_vehiclebrand" }

type VehicleModel struct {
	Oid              string `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	VehicleModelName string `gorm:"column:VehicleModelName;type:varchar(100)" json:"VehicleModelName"`
	Brand            string `gorm:"column:Brand;type:varchar(64);index" json:"Brand"`
	Category         string `gorm:"column:Category;type:varchar(50)" json:"Category"`
}

func (VehicleModel) TableName() string { return "sales_vehiclemodel" }

type VehicleType struct {
	Oid         string `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	TypeName    string `gorm:"column:TypeName;type:varchar(100)" json:"TypeName"`
	Description string `gorm:"column:Description;type:varchar(255)" json:"Description"`
}

func (VehicleType) TableName() string { return "sales_vehicletype" }

type VehicleColor struct {
	Oid         string `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	ColorCode   string `gorm:"column:ColorCode;type:varchar(20)" json:"ColorCode"`
	Description string `gorm:"column:Description;type:varchar(100)" json:"Description"`
	ColorNameEn string `gorm:"column:ColorNameEn;type:varchar(100)" json:"ColorNameEn"`
	ColorNameId string `gorm:"column:ColorNameId;type:varchar(100)" json:"ColorNameId"`
}

func (VehicleColor) TableName() string { return "sales_vehiclecolor" }

type VehicleFullModel struct {
	VehicleFullModelId   string `gorm:"column:VehicleFullModelId;type:varchar(64);primaryKey" json:"VehicleFullModelId"`
	VehicleFullModelName string `gorm:"column:VehicleFullModelName;type:varchar(150)" json:"VehicleFullModelName"`
	VehicleModel         string `gorm:"column:VehicleModel;type:varchar(64)" json:"VehicleModel"`
	ToyotaFullModelId    string `gorm:"column:ToyotaFullModelId;type:varchar(64)" json:"ToyotaFullModelId"`
}

func (VehicleFullModel) TableName() string { return "sales_vehiclefullmodel" }

type Customer struct {
	Oid              string `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	FirstName        string `gorm:"column:FirstName;type:varchar(100)" json:"FirstName"`
	LastName         string `gorm:"column:LastName;type:varchar(100)" json:"LastName"`
	CustomerAddress  string `gorm:"column:CustomerAddress;type:varchar(255)" json:"CustomerAddress"`
	MobileNo         string `gorm:"column:MobileNo;type:varchar(30)" json:"MobileNo"`
	IdentificationNo string `gorm:"column:IdentificationNo;type:varchar(50)" json:"IdentificationNo"`
	Province         int    `gorm:"column:Province" json:"Province"`
	City             int    `gorm:"column:City" json:"City"`
	District         int    `gorm:"column:District" json:"District"`
	CustomerType     string `gorm:"column:CustomerType;type:varchar(20)" json:"CustomerType"`
}

func (Customer) TableName() string { return "common_customer" }

type ContactPerson struct {
	Oid               string `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	ContactPersonName string `gorm:"column:ContactPersonName;type:varchar(100)" json:"ContactPersonName"`
	MobileNo          string `gorm:"column:MobileNo;type:varchar(30)" json:"MobileNo"`
	DefaultContact    int    `gorm:"column:DefaultContact" json:"DefaultContact"`
}

func (ContactPerson) TableName() string { return "common_contactperson" }

type Dealer struct {
	Oid        string `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	DealerName string `gorm:"column:DealerName;type:varchar(100)" json:"DealerName"`
	DealerType int    `gorm:"column:DealerType" json:"DealerType"`
	Branch     string `gorm:"column:Branch;type:varchar(20)" json:"Branch"`
}

func (Dealer) TableName() string { return "common_dealer" }

type Branch struct {
	BranchId       string `gorm:"column:BranchId;type:varchar(20);primaryKey" json:"BranchId"`
	BranchName     string `gorm:"column:BranchName;type:varchar(100)" json:"BranchName"`
	BranchType     int    `gorm:"column:BranchType" json:"BranchType"`
	LocationStatus int    `gorm:"column:LocationStatus" json:"LocationStatus"`
	BranchAddress  string `gorm:"column:BranchAddress;type:varchar(255)" json:"BranchAddress"`
	PhoneNo        string `gorm:"column:PhoneNo;type:varchar(30)" json:"PhoneNo"`
	Email          string `gorm:"column:Email;type:varchar(100)" json:"Email"`
}

func (Branch) TableName() string { return "common_branch" }

type VehicleUnit struct {
	Oid                 string     `gorm:"column:Oid;type:varchar(64);primaryKey" json:"Oid"`
	LicensePlateNumber  string     `gorm:"column:LicensePlateNumber;type:varchar(20)" json:"LicensePlateNumber"`
	FrameSerialNo       string     `gorm:"column:FrameSerialNo;type:varchar(50)" json:"FrameSerialNo"`
	EngineSerialNo      string     `gorm:"column:EngineSerialNo;type:varchar(50)" json:"EngineSerialNo"`
	VehicleDeliveryDate *time.Time `gorm:"column:VehicleDeliveryDate" json:"VehicleDeliveryDate"`
	Color               string     `gorm:"column:Color;type:varchar(64)" json:"Color"`
	VehicleModel        string     `gorm:"column:VehicleModel;type:varchar(64)" json:"VehicleModel"`
	VehicleFullModel    string     `gorm:"column:VehicleFullModel;type:varchar(64)" json:"VehicleFullModel"`
	Customer            string     `gorm:"column:Customer;type:varchar(64);index" json:"Customer"`
	Dealer              string     `gorm:"column:Dealer;type:varchar(64)" json:"Dealer"`
	DefaultContact      *string    `gorm:"column:DefaultContact;type:varchar(64)" json:"DefaultContact"`
}

func (VehicleUnit) TableName() string { return "sales_vehicleunit" }

type User struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username  string `gorm:"column:username;type:varchar(100);uniqueIndex" json:"username"`
	Password  string `gorm:"column:password;type:varchar(255)" json:"-"`
	Email     string `gorm:"column:email;type:varchar(100)" json:"email"`
	FirstName string `gorm:"column:first_name;type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"column:last_name;type:varchar(100)" json:"last_name"`
	Active    int    `gorm:"column:active" json:"active"`
}

func (User) TableName() string { return "users" }

// Models lists every catalog table, in dependency order for migration.
func Models() []any {
	return []any{
		&Branch{},
		&VehicleBrand{},
		&VehicleModel{},
		&VehicleType{},
		&VehicleColor{},
		&VehicleFullModel{},
		&Customer{},
		&ContactPerson{},
		&Dealer{},
		&VehicleUnit{},
		&User{},
	}
}
