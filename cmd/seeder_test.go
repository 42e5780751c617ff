package cmd

import (
	"context"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/database/dbtest"
	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var _ = Describe("seedReferenceData", func() {
	var (
		db  *gorm.DB
		ctx context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	count := func(model interface{}) int64 {
		var n int64
		Expect(db.Model(model).Count(&n).Error).NotTo(HaveOccurred())
		return n
	}

	It("creates the reference data and two approved accounts", func() {
		accounts, err := seedReferenceData(ctx, db, "secret-pass", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		Expect(accounts).To(HaveLen(2))

		Expect(count(&userDatamodel.Permission{})).To(Equal(int64(len(permissionDescriptions))))
		Expect(count(&userDatamodel.Role{})).To(Equal(int64(len(rolePermissions))))
		Expect(count(&leaveDatamodel.LeaveType{})).To(Equal(int64(4)))

		var admin userDatamodel.User
		Expect(db.Where("email = ?", "admin@hr-attendance.local").First(&admin).Error).NotTo(HaveOccurred())
		Expect(bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret-pass"))).To(Succeed())

		var emp employeeDatamodel.Employee
		Expect(db.Where("user_id = ?", admin.ID).First(&emp).Error).NotTo(HaveOccurred())
		Expect(emp.Status).To(Equal("approved"))
		Expect(emp.Role).To(Equal(auth.RoleAdmin))
		Expect(emp.StartDate).NotTo(BeNil())
	})

	It("restricts maternity leave to female employees", func() {
		_, err := seedReferenceData(ctx, db, "secret-pass", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		var lt leaveDatamodel.LeaveType
		Expect(db.Where("code = ?", "MATERNITY").First(&lt).Error).NotTo(HaveOccurred())
		Expect(lt.GenderLimit).NotTo(BeNil())
		Expect(*lt.GenderLimit).To(Equal("female"))
		Expect(lt.IsActive).To(BeTrue())
	})

	It("is idempotent", func() {
		first, err := seedReferenceData(ctx, db, "secret-pass", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		second, err := seedReferenceData(ctx, db, "other-pass", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(count(&userDatamodel.User{})).To(Equal(int64(2)))
		Expect(count(&employeeDatamodel.Employee{})).To(Equal(int64(2)))

		var grants int64
		for _, perms := range rolePermissions {
			grants += int64(len(perms))
		}
		Expect(count(&userDatamodel.RolePermission{})).To(Equal(grants))

		var admin userDatamodel.User
		Expect(db.Where("email = ?", "admin@hr-attendance.local").First(&admin).Error).NotTo(HaveOccurred())
		Expect(bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret-pass"))).To(Succeed())
	})

	It("grants the HR role every review permission", func() {
		_, err := seedReferenceData(ctx, db, "secret-pass", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		var names []string
		err = db.Table("permissions").
			Select("permissions.name").
			Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
			Joins("JOIN roles ON roles.id = role_permissions.role_id").
			Where("roles.name = ?", auth.RoleHR).
			Pluck("permissions.name", &names).Error
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(ContainElements(auth.PermLeavesReviewHR, auth.PermEmployeesReview, auth.PermPunchCorrectionReview))
		Expect(names).NotTo(ContainElement(auth.PermAdmin))
	})
})
