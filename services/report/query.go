package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// sqlDialect renders the few expressions that differ between the supported databases.
// Decimals and dates are turned into text inside SQL so no value passes through a float.
type sqlDialect struct {
	name string
}

func dialectOf(db *gorm.DB) sqlDialect {
	return sqlDialect{name: db.Dialector.Name()}
}

func (d sqlDialect) ident(table, column string) string {
	if d.name == "postgres" {
		return fmt.Sprintf(`%s."%s"`, table, column)
	}
	return table + "." + column
}

func (d sqlDialect) text(expr string) string {
	if d.name == "mysql" {
		return "CAST(" + expr + " AS CHAR)"
	}
	return "CAST(" + expr + " AS TEXT)"
}

func (d sqlDialect) date(expr string) string {
	switch d.name {
	case "mysql":
		return "DATE_FORMAT(" + expr + ", '%Y-%m-%d')"
	case "postgres":
		return "to_char(" + expr + ", 'YYYY-MM-DD')"
	default:
		return "strftime('%Y-%m-%d', " + expr + ")"
	}
}

func (d sqlDialect) alias(name string) string {
	if d.name == "postgres" {
		return `"` + name + `"`
	}
	return name
}

type selectKind int

const (
	plain selectKind = iota
	asText
	asDate
)

type selectItem struct {
	table  string
	column string
	kind   selectKind
	as     string
}

// workOrderSelect yields one item per entry of Columns, in the same order.
var workOrderSelect = []selectItem{
	{"sw", "Oid", plain, "Oid"},
	{"sw", "WorkOrderNo", plain, "WorkOrderNo"},
	{"sw", "WorkOrderDate", asDate, "WorkOrderDate"},
	{"sw", "BookingNo", plain, "BookingNo"},
	{"sw", "Branch", plain, "Branch"},
	{"sw", "WorkOrderStatus", asText, "WorkOrderStatus"},
	{"sw", "ServiceAdvisor", plain, "ServiceAdvisor"},
	{"sw", "TotalPartWithholdingTax", asText, "TotalPartWithholdingTax"},
	{"sw", "VehicleUnit", plain, "VehicleUnit"},
	{"sw", "RepairType", asText, "RepairType"},
	{"sw", "DamageCategory", asText, "DamageCategory"},
	{"sw", "ServiceStartOn", asDate, "ServiceStartOn"},
	{"sw", "GrossJobSales", asText, "GrossJobSales"},
	{"sw", "GrossPartSales", asText, "GrossPartSales"},
	{"sw", "TotalPartDiscount", asText, "TotalPartDiscount"},
	{"sw", "TotalPartProgram", asText, "TotalPartProgram"},
	{"sw", "TotalPartVAT", asText, "TotalPartVAT"},
	{"sw", "TotalJobDiscount", asText, "TotalJobDiscount"},
	{"sw", "TotalJobProgram", asText, "TotalJobProgram"},
	{"sw", "TotalJobVAT", asText, "TotalJobVAT"},
	{"sw", "TotalJob", asText, "TotalJob"},
	{"sw", "TotalPart", asText, "TotalPart"},
	{"sw", "TotalInvoice", asText, "TotalInvoice"},
	{"sw", "RepairSubType", plain, "RepairSubType"},
	{"sw", "SPKReference", plain, "SPKReference"},
	{"u", "first_name", plain, "ServiceAdvisorName"},
	{"svu", "LicensePlateNumber", plain, "LicensePlateNumber"},
	{"svu", "FrameSerialNo", plain, "FrameSerialNo"},
	{"svu", "EngineSerialNo", plain, "EngineSerialNo"},
	{"svu", "VehicleDeliveryDate", asDate, "VehicleDeliveryDate"},
	{"svc", "Description", plain, "Color"},
	{"svu", "VehicleModel", plain, "VehicleModel"},
	{"svfm", "VehicleFullModelName", plain, "VehicleFullModelName"},
	{"cc", "FirstName", plain, "Customer"},
	{"cc", "CustomerAddress", plain, "Street"},
	{"cc", "MobileNo", plain, "CustomerMobileNo"},
	{"cc", "IdentificationNo", plain, "IdentificationNo"},
	{"cc", "Province", asText, "Province"},
	{"cc", "City", asText, "City"},
	{"cc", "District", asText, "District"},
	{"cc", "CustomerType", plain, "CustomerType"},
	{"cp", "ContactPersonName", plain, "ContactPersonName"},
	{"cp", "MobileNo", plain, "ContactPersonMobileNo"},
	{"srt", "RepairTypeDescription", plain, "RepairTypeDescription"},
	{"cb", "BranchName", plain, "BranchName"},
	{"svm", "VehicleModelName", plain, "VehicleModelName"},
	{"svm", "Category", plain, "VehicleCategory"},
	{"svb", "BrandName", plain, "BrandName"},
	{"cd", "DealerName", plain, "DealerName"},
	{"cd", "DealerType", asText, "DealerType"},
	{"smt", "Description", plain, "MobileServiceType"},
}

func (d sqlDialect) workOrderQuery() string {
	cols := make([]string, len(workOrderSelect))
	for i, item := range workOrderSelect {
		expr := d.ident(item.table, item.column)
		switch item.kind {
		case asText:
			expr = d.text(expr)
		case asDate:
			expr = d.date(expr)
		}
		cols[i] = expr + " AS " + d.alias(item.as)
	}

	on := func(lt, lc, rt, rc string) string {
		return d.ident(lt, lc) + " = " + d.ident(rt, rc)
	}

	var b strings.Builder
	b.WriteString("SELECT\n  ")
	b.WriteString(strings.Join(cols, ",\n  "))
	b.WriteString("\nFROM service_workorder sw")
	b.WriteString("\nJOIN common_branch cb ON " + on("sw", "Branch", "cb", "BranchId"))
	b.WriteString("\nJOIN service_repairtype srt ON " + on("sw", "RepairType", "srt", "RepairTypeId"))
	b.WriteString("\nJOIN sales_vehicleunit svu ON " + on("sw", "VehicleUnit", "svu", "Oid"))
	b.WriteString("\nJOIN common_customer cc ON " + on("svu", "Customer", "cc", "Oid"))
	b.WriteString("\nJOIN common_dealer cd ON " + on("svu", "Dealer", "cd", "Oid"))
	b.WriteString("\nJOIN sales_vehiclemodel svm ON " + on("svu", "VehicleModel", "svm", "Oid"))
	b.WriteString("\nJOIN sales_vehiclecolor svc ON " + on("svu", "Color", "svc", "Oid"))
	b.WriteString("\nJOIN sales_vehiclebrand svb ON " + on("svm", "Brand", "svb", "Oid"))
	b.WriteString("\nJOIN sales_vehiclefullmodel svfm ON " + on("svu", "VehicleFullModel", "svfm", "VehicleFullModelId"))
	b.WriteString("\nLEFT JOIN service_mobileservicetype smt ON " + on("sw", "MobileServiceType", "smt", "Oid"))
	b.WriteString("\nLEFT JOIN common_contactperson cp ON " + on("svu", "DefaultContact", "cp", "Oid"))
	b.WriteString("\nLEFT JOIN users u ON " + d.ident("sw", "ServiceAdvisor") + " = " + d.text(d.ident("u", "id")))
	b.WriteString("\nWHERE " + d.ident("sw", "WorkOrderDate") + " >= ? AND " + d.ident("sw", "WorkOrderDate") + " < ?")
	b.WriteString("\nORDER BY " + d.ident("sw", "WorkOrderNo") + " ASC")
	return b.String()
}

// dayRange turns the inclusive day range [start, end] into the half-open bounds
// [start, end+1 day) compared directly against WorkOrderDate.
func dayRange(start, end string) (from, until string, err error) {
	if _, err := time.Parse(dateLayout, start); err != nil {
		return "", "", fmt.Errorf("parse start date %q: %w", start, err)
	}
	last, err := time.Parse(dateLayout, end)
	if err != nil {
		return "", "", fmt.Errorf("parse end date %q: %w", end, err)
	}
	return start, last.AddDate(0, 0, 1).Format(dateLayout), nil
}

// QueryWorkOrders runs the wide join for the days start through end and returns the open
// row cursor. The caller must close the rows.
func QueryWorkOrders(ctx context.Context, db *gorm.DB, start, end string) (*sql.Rows, error) {
	from, until, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx).Raw(dialectOf(db).workOrderQuery(), from, until).Rows()
}
