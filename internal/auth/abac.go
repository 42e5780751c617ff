package auth

// RecordPolicy decides access to records owned by an employee (leaves, punches,
// corrections, balances) from the requester's attributes.
type RecordPolicy struct{}

func NewRecordPolicy() *RecordPolicy {
	return &RecordPolicy{}
}

// CanView allows the owner, the owner's direct manager, and holders of viewAllPermission.
func (p *RecordPolicy) CanView(u *User, ownerEmployeeID int64, ownerManagerID *int64, viewAllPermission string) bool {
	if u == nil {
		return false
	}
	if u.EmployeeID != 0 && u.EmployeeID == ownerEmployeeID {
		return true
	}
	if p.IsManagerOf(u, ownerManagerID) {
		return true
	}
	return viewAllPermission != "" && u.HasPermission(viewAllPermission)
}

// IsManagerOf reports whether u is the direct manager recorded on the owner.
func (p *RecordPolicy) IsManagerOf(u *User, ownerManagerID *int64) bool {
	return u != nil && u.EmployeeID != 0 && ownerManagerID != nil && *ownerManagerID == u.EmployeeID
}

// IsOwner reports whether u is the employee owning the record.
func (p *RecordPolicy) IsOwner(u *User, ownerEmployeeID int64) bool {
	return u != nil && u.EmployeeID != 0 && u.EmployeeID == ownerEmployeeID
}
