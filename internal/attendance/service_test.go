package attendance_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval/approvaltest"
	"github.com/frahmantamala/office-hr/internal/attendance"
	"github.com/frahmantamala/office-hr/internal/attendance/attendancetest"
	"github.com/frahmantamala/office-hr/internal/permission"
)

func TestAttendance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attendance Suite")
}

var _ = Describe("Attendance", func() {
	var (
		audit   *approvaltest.Recorder
		service *attendance.Service
		ctx     context.Context
		md      internal.Identity
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		audit = &approvaltest.Recorder{}
		service = attendance.NewService(attendancetest.NewMemoryRepository(), audit, logger)
		ctx = context.Background()
		md = internal.Identity{CompanyID: "c1", UserID: "usr_md", Role: permission.RoleMD}
	})

	It("keeps one record per employee and day", func() {
		first, err := service.Upsert(ctx, md, attendance.UpsertAttendanceDTO{
			Date: "2026-10-14", EmployeeID: "emp_1", EmployeeName: "Ravi Menon", Status: "Present", CheckIn: "09:05",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Status).To(Equal(attendance.StatusPresent))

		second, err := service.Upsert(ctx, md, attendance.UpsertAttendanceDTO{
			Date: "2026-10-14", EmployeeID: "emp_1", EmployeeName: "Ravi Menon", Status: "present", CheckIn: "09:05", CheckOut: "18:10",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(second.ID).To(Equal(first.ID))
		Expect(second.CheckOut).To(Equal("18:10"))

		records, total, err := service.List(ctx, "c1", attendance.ListFilter{Date: "2026-10-14"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeEquivalentTo(1))
		Expect(records[0].CheckOut).To(Equal("18:10"))
		Expect(audit.Actions()).To(Equal([]string{"UPSERT", "UPSERT"}))
	})

	It("lists newest days first and filters by department", func() {
		for _, dto := range []attendance.UpsertAttendanceDTO{
			{Date: "2026-10-13", EmployeeID: "emp_1", Department: "Ops", Status: "present"},
			{Date: "2026-10-14", EmployeeID: "emp_1", Department: "Ops", Status: "remote"},
			{Date: "2026-10-14", EmployeeID: "emp_2", Department: "Sales", Status: "absent"},
		} {
			_, err := service.Upsert(ctx, md, dto)
			Expect(err).NotTo(HaveOccurred())
		}

		records, total, err := service.List(ctx, "c1", attendance.ListFilter{Department: "Ops"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeEquivalentTo(2))
		Expect(records[0].Date).To(Equal("2026-10-14"))

		_, total, err = service.List(ctx, "c2", attendance.ListFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeZero())
	})

	DescribeTable("rejects invalid records",
		func(dto attendance.UpsertAttendanceDTO) {
			_, err := service.Upsert(ctx, md, dto)
			Expect(internal.AsAppError(err).Type).To(Equal(internal.ErrorTypeValidation))
			Expect(audit.Entries).To(BeEmpty())
		},
		Entry("bad date", attendance.UpsertAttendanceDTO{Date: "14-10-2026", EmployeeID: "emp_1", Status: "present"}),
		Entry("unknown status", attendance.UpsertAttendanceDTO{Date: "2026-10-14", EmployeeID: "emp_1", Status: "sleeping"}),
		Entry("missing employee", attendance.UpsertAttendanceDTO{Date: "2026-10-14", Status: "present"}),
		Entry("bad clock", attendance.UpsertAttendanceDTO{Date: "2026-10-14", EmployeeID: "emp_1", Status: "present", CheckIn: "9am"}),
		Entry("check out before check in", attendance.UpsertAttendanceDTO{Date: "2026-10-14", EmployeeID: "emp_1", Status: "present", CheckIn: "10:00", CheckOut: "09:00"}),
	)
})
