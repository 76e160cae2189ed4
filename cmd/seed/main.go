package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workshop-backend/pkg/config"
	"workshop-backend/pkg/db"
	"workshop-backend/pkg/logger"
	"workshop-backend/pkg/storage"
	"workshop-backend/services/catalog"
	"workshop-backend/services/report"
)

func main() {
	opts := []fx.Option{
		config.Module,
		fx.Provide(storage.NewPaths),
		logger.Module,
		db.Module,
		fx.Invoke(run),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	if err := app.Stop(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func run(lc fx.Lifecycle, gdb *gorm.DB) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			models := append(catalog.Models(), report.SourceModels()...)
			models = append(models, &report.ReportJob{})
			if err := gdb.WithContext(ctx).AutoMigrate(models...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			s := &seeder{db: gdb.WithContext(ctx), rnd: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))}
			if err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				s.db = tx
				return s.seed()
			}); err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			zap.L().Info("[Seed] completed")
			return nil
		},
	})
}

type seeder struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// between returns a value in [min, max].
func (s *seeder) between(min, max int) int {
	return min + s.rnd.IntN(max-min+1)
}

func (s *seeder) date(from time.Time) time.Time {
	span := time.Since(from)
	return from.Add(time.Duration(s.rnd.Int64N(int64(span))))
}

func pick[T any](s *seeder, items []T) T {
	return items[s.rnd.IntN(len(items))]
}

func (s *seeder) create(name string, value any) error {
	if err := s.db.Create(value).Error; err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *seeder) seed() error {
	var branches []*catalog.Branch
	for i := 1; i <= 5; i++ {
		branches = append(branches, &catalog.Branch{
			BranchId:       fmt.Sprintf("BR%03d", i),
			BranchName:     fmt.Sprintf("Branch %d", i),
			BranchType:     1,
			LocationStatus: 1,
			BranchAddress:  fmt.Sprintf("Street %d", i),
			PhoneNo:        fmt.Sprintf("021-%07d", i),
			Email:          fmt.Sprintf("branch%d@example.com", i),
		})
	}
	if err := s.create("branches", branches); err != nil {
		return err
	}

	var brands []*catalog.VehicleBrand
	for _, name := range []string{"Toyota", "Honda", "Suzuki"} {
		brands = append(brands, &catalog.VehicleBrand{Oid: uuid.NewString(), BrandName: name})
	}
	if err := s.create("brands", brands); err != nil {
		return err
	}

	var models []*catalog.VehicleModel
	for _, brand := range brands {
		for i, category := range []string{"Sedan", "SUV", "MPV"} {
			models = append(models, &catalog.VehicleModel{
				Oid:              uuid.NewString(),
				VehicleModelName: fmt.Sprintf("%s Model %d", brand.BrandName, i+1),
				Brand:            brand.Oid,
				Category:         category,
			})
		}
	}
	if err := s.create("models", models); err != nil {
		return err
	}

	var colors []*catalog.VehicleColor
	for _, c := range [][3]string{
		{"WHT", "White", "Putih"},
		{"BLK", "Black", "Hitam"},
		{"SLV", "Silver", "Silver"},
		{"RED", "Red", "Merah"},
		{"BLU", "Blue", "Biru"},
	} {
		colors = append(colors, &catalog.VehicleColor{
			Oid:         uuid.NewString(),
			ColorCode:   c[0],
			Description: c[1],
			ColorNameEn: c[1],
			ColorNameId: c[2],
		})
	}
	if err := s.create("colors", colors); err != nil {
		return err
	}

	var fullModels []*catalog.VehicleFullModel
	for _, m := range models {
		for i, trim := range []string{"Basic", "Medium", "Premium"} {
			fullModels = append(fullModels, &catalog.VehicleFullModel{
				VehicleFullModelId:   uuid.NewString(),
				VehicleFullModelName: m.VehicleModelName + " " + trim,
				VehicleModel:         m.Oid,
				ToyotaFullModelId:    fmt.Sprintf("%s%d", m.VehicleModelName[:3], i+1),
			})
		}
	}
	if err := s.create("full models", fullModels); err != nil {
		return err
	}

	var customers []*catalog.Customer
	for i := 1; i <= 50; i++ {
		customerType := "FLEET"
		if s.rnd.IntN(2) == 0 {
			customerType = "RETAIL"
		}
		customers = append(customers, &catalog.Customer{
			Oid:              uuid.NewString(),
			FirstName:        fmt.Sprintf("Customer%d", i),
			LastName:         fmt.Sprintf("Lastname%d", i),
			CustomerAddress:  fmt.Sprintf("Address %d", i),
			MobileNo:         fmt.Sprintf("08%010d", i),
			IdentificationNo: fmt.Sprintf("ID%03d", i),
			Province:         s.between(1, 34),
			City:             s.between(1, 100),
			District:         s.between(1, 500),
			CustomerType:     customerType,
		})
	}
	if err := s.create("customers", customers); err != nil {
		return err
	}

	var dealers []*catalog.Dealer
	for i := 1; i <= 10; i++ {
		dealers = append(dealers, &catalog.Dealer{
			Oid:        uuid.NewString(),
			DealerName: fmt.Sprintf("Dealer %d", i),
			DealerType: s.between(1, 3),
			Branch:     pick(s, branches).BranchId,
		})
	}
	if err := s.create("dealers", dealers); err != nil {
		return err
	}

	var contacts []*catalog.ContactPerson
	for i := 1; i <= 50; i++ {
		contacts = append(contacts, &catalog.ContactPerson{
			Oid:               uuid.NewString(),
			ContactPersonName: fmt.Sprintf("Contact %d", i),
			MobileNo:          fmt.Sprintf("08%010d", i),
			DefaultContact:    1,
		})
	}
	if err := s.create("contact persons", contacts); err != nil {
		return err
	}

	var advisors []*catalog.User
	for i := 1; i <= 10; i++ {
		advisors = append(advisors, &catalog.User{
			Username:  fmt.Sprintf("advisor%d", i),
			Password:  "hashedpassword123",
			Email:     fmt.Sprintf("advisor%d@example.com", i),
			FirstName: "Advisor",
			LastName:  strconv.Itoa(i),
			Active:    1,
		})
	}
	if err := s.create("service advisors", advisors); err != nil {
		return err
	}

	var repairTypes []*report.RepairType
	for i, desc := range []string{"Regular Service", "Body Repair", "Engine Repair", "Electrical Repair", "General Repair"} {
		repairTypes = append(repairTypes, &report.RepairType{
			RepairTypeId:          int64(i + 1),
			RepairTypeDescription: desc,
			Branch:                branches[0].BranchId,
		})
	}
	if err := s.create("repair types", repairTypes); err != nil {
		return err
	}

	var mobileTypes []*report.MobileServiceType
	for _, desc := range []string{"Home Service", "Emergency Service", "Regular Service"} {
		mobileTypes = append(mobileTypes, &report.MobileServiceType{Description: desc})
	}
	if err := s.create("mobile service types", mobileTypes); err != nil {
		return err
	}

	var units []*catalog.VehicleUnit
	for i := 1; i <= 100; i++ {
		delivered := s.date(time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local))
		contact := pick(s, contacts).Oid
		units = append(units, &catalog.VehicleUnit{
			Oid:                 uuid.NewString(),
			LicensePlateNumber:  fmt.Sprintf("B %04d CD", i),
			FrameSerialNo:       fmt.Sprintf("FRAME%03d", i),
			EngineSerialNo:      fmt.Sprintf("ENGINE%03d", i),
			VehicleDeliveryDate: &delivered,
			Color:               pick(s, colors).Oid,
			VehicleModel:        pick(s, models).Oid,
			VehicleFullModel:    pick(s, fullModels).VehicleFullModelId,
			Customer:            pick(s, customers).Oid,
			Dealer:              pick(s, dealers).Oid,
			DefaultContact:      &contact,
		})
	}
	if err := s.create("vehicle units", units); err != nil {
		return err
	}

	var workOrders []*report.WorkOrder
	for i, unit := range units {
		workOrders = append(workOrders, s.workOrder(i+1, unit, branches, advisors, repairTypes, mobileTypes))
	}
	if err := s.create("work orders", workOrders); err != nil {
		return err
	}

	zap.L().Info("[Seed] inserted sample data",
		zap.Int("branches", len(branches)),
		zap.Int("customers", len(customers)),
		zap.Int("vehicle_units", len(units)),
		zap.Int("work_orders", len(workOrders)),
	)
	return nil
}

func (s *seeder) workOrder(n int, unit *catalog.VehicleUnit, branches []*catalog.Branch, advisors []*catalog.User,
	repairTypes []*report.RepairType, mobileTypes []*report.MobileServiceType) *report.WorkOrder {
	totalJob := s.between(500000, 2000000)
	totalPart := s.between(300000, 1000000)
	partDiscount := totalPart / 10
	jobDiscount := totalJob / 10
	partVAT := (totalPart - partDiscount) * 11 / 100
	jobVAT := (totalJob - jobDiscount) * 11 / 100
	job := totalJob - jobDiscount + jobVAT
	part := totalPart - partDiscount + partVAT

	since := time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)
	startedOn := s.date(since)
	advisor := strconv.FormatUint(uint64(pick(s, advisors).ID), 10)
	mobileType := pick(s, mobileTypes).Oid

	return &report.WorkOrder{
		Oid:               uuid.NewString(),
		WorkOrderNo:       fmt.Sprintf("WO%03d", n),
		WorkOrderDate:     s.date(since),
		BookingNo:         fmt.Sprintf("BK%03d", n),
		Branch:            pick(s, branches).BranchId,
		WorkOrderStatus:   s.between(1, 5),
		ServiceAdvisor:    &advisor,
		VehicleUnit:       unit.Oid,
		RepairType:        pick(s, repairTypes).RepairTypeId,
		DamageCategory:    s.between(1, 3),
		ServiceStartOn:    &startedOn,
		GrossJobSales:     money(totalJob),
		GrossPartSales:    money(totalPart),
		TotalPartDiscount: money(partDiscount),
		TotalPartProgram:  money(0),
		TotalPartVAT:      money(partVAT),
		TotalJobDiscount:  money(jobDiscount),
		TotalJobProgram:   money(0),
		TotalJobVAT:       money(jobVAT),
		TotalJob:          money(job),
		TotalPart:         money(part),
		TotalInvoice:      money(job + part),
		RepairSubType:     pick(s, []string{"Regular", "Express", "Premium"}),
		SPKReference:      fmt.Sprintf("SPK%03d", n),
		MobileServiceType: &mobileType,
	}
}

func money(v int) report.Decimal {
	return report.Decimal(strconv.Itoa(v) + ".00")
}
