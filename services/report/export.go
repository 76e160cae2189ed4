package report

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"

	"workshop-backend/pkg/errutil"
)

type Column struct {
	ID    string
	Title string
}

// Columns is the fixed layout of the work-order CSV, in output order.
var Columns = []Column{
	{"Oid", "ID"},
	{"WorkOrderNo", "Work Order No"},
	{"WorkOrderDate", "Work Order Date"},
	{"BookingNo", "Booking No"},
	{"Branch", "Branch"},
	{"WorkOrderStatus", "Status"},
	{"ServiceAdvisor", "Service Advisor"},
	{"TotalPartWithholdingTax", "Part Withholding Tax"},
	{"VehicleUnit", "Vehicle Unit"},
	{"RepairType", "Repair Type"},
	{"DamageCategory", "Damage Category"},
	{"ServiceStartOn", "Service Start On"},
	{"GrossJobSales", "Gross Job Sales"},
	{"GrossPartSales", "Gross Part Sales"},
	{"TotalPartDiscount", "Total Part Discount"},
	{"TotalPartProgram", "Total Part Program"},
	{"TotalPartVAT", "Total Part VAT"},
	{"TotalJobDiscount", "Total Job Discount"},
	{"TotalJobProgram", "Total Job Program"},
	{"TotalJobVAT", "Total Job VAT"},
	{"TotalJob", "Total Job"},
	{"TotalPart", "Total Part"},
	{"TotalInvoice", "Total Invoice"},
	{"RepairSubType", "Repair Sub Type"},
	{"SPKReference", "SPK Reference"},
	{"ServiceAdvisorName", "Service Advisor Name"},
	{"LicensePlateNumber", "License Plate Number"},
	{"FrameSerialNo", "Frame Serial No"},
	{"EngineSerialNo", "Engine Serial No"},
	{"VehicleDeliveryDate", "Vehicle Delivery Date"},
	{"Color", "Color"},
	{"VehicleModel", "Vehicle Model"},
	{"VehicleFullModelName", "Vehicle Full Model Name"},
	{"Customer", "Customer"},
	{"Street", "Street"},
	{"CustomerMobileNo", "Customer Mobile No"},
	{"IdentificationNo", "Identification No"},
	{"Province", "Province"},
	{"City", "City"},
	{"District", "District"},
	{"CustomerType", "Customer Type"},
	{"ContactPersonName", "Contact Person Name"},
	{"ContactPersonMobileNo", "Contact Person Mobile No"},
	{"RepairTypeDescription", "Repair Type Description"},
	{"BranchName", "Branch Name"},
	{"VehicleModelName", "Vehicle Model Name"},
	{"VehicleCategory", "Vehicle Category"},
	{"BrandName", "Brand Name"},
	{"DealerName", "Dealer Name"},
	{"DealerType", "Dealer Type"},
	{"MobileServiceType", "Mobile Service Type"},
}

func headerRow() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = c.Title
	}
	return out
}

// RowSource is the subset of *sql.Rows the writer needs.
type RowSource interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// WriteCSV streams rows into w as CSV with the header row first. Each row must carry
// len(Columns) text columns; NULL becomes an empty cell. It returns the number of data rows.
// Read failures are reported as QUERY_EXECUTION_ERROR, write failures as FILESYSTEM_ERROR.
func WriteCSV(ctx context.Context, w io.Writer, rows RowSource) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(headerRow()); err != nil {
		return 0, errutil.Filesystem("failed to write report header", err)
	}

	values := make([]sql.NullString, len(Columns))
	dest := make([]any, len(Columns))
	for i := range values {
		dest[i] = &values[i]
	}
	record := make([]string, len(Columns))

	var count int64
	for rows.Next() {
		if count%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return count, err
			}
		}

		if err := rows.Scan(dest...); err != nil {
			return count, errutil.QueryExecution(fmt.Sprintf("failed to read row %d", count+1), err)
		}
		for i, v := range values {
			if v.Valid {
				record[i] = v.String
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return count, errutil.Filesystem("failed to write report row", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, errutil.QueryExecution("failed to read work orders", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, errutil.Filesystem("failed to flush report", err)
	}
	return count, nil
}
