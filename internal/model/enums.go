package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"backoffice/internal/apperr"
)

// enumTable is the single source of truth for an enum's wire names.
type enumTable[T ~int8] struct {
	name   string
	order  []T
	names  map[T]string
	values map[string]T
}

func newEnumTable[T ~int8](name string, pairs ...interface{}) enumTable[T] {
	t := enumTable[T]{name: name, names: map[T]string{}, values: map[string]T{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		v := pairs[i].(T)
		s := pairs[i+1].(string)
		t.order = append(t.order, v)
		t.names[v] = s
		t.values[s] = v
	}
	return t
}

func (t enumTable[T]) str(v T) string {
	if s, ok := t.names[v]; ok {
		return s
	}
	return "unknown"
}

func (t enumTable[T]) parse(s string) (T, error) {
	if v, ok := t.values[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	var zero T
	return zero, apperr.Validation("invalid %s %q: must be one of %s", t.name, s, strings.Join(t.all(), ", "))
}

func (t enumTable[T]) all() []string {
	out := make([]string, 0, len(t.order))
	for _, v := range t.order {
		out = append(out, t.names[v])
	}
	return out
}

func (t enumTable[T]) unmarshal(data []byte) (T, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var zero T
		return zero, apperr.Validation("%s must be a string", t.name)
	}
	return t.parse(s)
}

func (t enumTable[T]) scan(src interface{}) (T, error) {
	var n int64
	switch v := src.(type) {
	case int64:
		n = v
	case int32:
		n = int64(v)
	case int16:
		n = int64(v)
	case int8:
		n = int64(v)
	case []byte:
		if _, err := fmt.Sscan(string(v), &n); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("cannot scan %T into %s", src, t.name)
	}
	return T(n), nil
}

// UserStatus

type UserStatus int8

const (
	UserStatusActive UserStatus = iota + 1
	UserStatusInactive
	UserStatusSuspended
)

var userStatuses = newEnumTable[UserStatus]("user status",
	UserStatusActive, "active",
	UserStatusInactive, "inactive",
	UserStatusSuspended, "suspended",
)

func ParseUserStatus(s string) (UserStatus, error) { return userStatuses.parse(s) }
func (s UserStatus) String() string                { return userStatuses.str(s) }
func (s UserStatus) MarshalJSON() ([]byte, error)  { return json.Marshal(s.String()) }
func (s *UserStatus) UnmarshalJSON(b []byte) (err error) {
	*s, err = userStatuses.unmarshal(b)
	return err
}
func (s UserStatus) Value() (driver.Value, error) { return int64(s), nil }
func (s *UserStatus) Scan(src interface{}) (err error) {
	*s, err = userStatuses.scan(src)
	return err
}

// ComplaintReportStatus

type ComplaintReportStatus int8

const (
	ComplaintOpen ComplaintReportStatus = iota + 1
	ComplaintInProgress
	ComplaintResolved
	ComplaintRejected
)

var complaintStatuses = newEnumTable[ComplaintReportStatus]("complaint report status",
	ComplaintOpen, "open",
	ComplaintInProgress, "in_progress",
	ComplaintResolved, "resolved",
	ComplaintRejected, "rejected",
)

func ParseComplaintReportStatus(s string) (ComplaintReportStatus, error) {
	return complaintStatuses.parse(s)
}
func (s ComplaintReportStatus) String() string               { return complaintStatuses.str(s) }
func (s ComplaintReportStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }
func (s *ComplaintReportStatus) UnmarshalJSON(b []byte) (err error) {
	*s, err = complaintStatuses.unmarshal(b)
	return err
}
func (s ComplaintReportStatus) Value() (driver.Value, error) { return int64(s), nil }
func (s *ComplaintReportStatus) Scan(src interface{}) (err error) {
	*s, err = complaintStatuses.scan(src)
	return err
}

// IsFinal reports whether no further transitions are allowed
func (s ComplaintReportStatus) IsFinal() bool {
	return s == ComplaintResolved || s == ComplaintRejected
}

// PaymentStatus

type PaymentStatus int8

const (
	PaymentPending PaymentStatus = iota + 1
	PaymentPaid
	PaymentOverdue
	PaymentCancelled
)

var paymentStatuses = newEnumTable[PaymentStatus]("payment status",
	PaymentPending, "pending",
	PaymentPaid, "paid",
	PaymentOverdue, "overdue",
	PaymentCancelled, "cancelled",
)

func ParsePaymentStatus(s string) (PaymentStatus, error) { return paymentStatuses.parse(s) }
func (s PaymentStatus) String() string                   { return paymentStatuses.str(s) }
func (s PaymentStatus) MarshalJSON() ([]byte, error)     { return json.Marshal(s.String()) }
func (s *PaymentStatus) UnmarshalJSON(b []byte) (err error) {
	*s, err = paymentStatuses.unmarshal(b)
	return err
}
func (s PaymentStatus) Value() (driver.Value, error) { return int64(s), nil }
func (s *PaymentStatus) Scan(src interface{}) (err error) {
	*s, err = paymentStatuses.scan(src)
	return err
}

// UserTaskStatus

type UserTaskStatus int8

const (
	UserTaskPending UserTaskStatus = iota + 1
	UserTaskInProgress
	UserTaskDone
	UserTaskSkipped
)

var userTaskStatuses = newEnumTable[UserTaskStatus]("user task status",
	UserTaskPending, "pending",
	UserTaskInProgress, "in_progress",
	UserTaskDone, "done",
	UserTaskSkipped, "skipped",
)

func ParseUserTaskStatus(s string) (UserTaskStatus, error) { return userTaskStatuses.parse(s) }
func (s UserTaskStatus) String() string                    { return userTaskStatuses.str(s) }
func (s UserTaskStatus) MarshalJSON() ([]byte, error)      { return json.Marshal(s.String()) }
func (s *UserTaskStatus) UnmarshalJSON(b []byte) (err error) {
	*s, err = userTaskStatuses.unmarshal(b)
	return err
}
func (s UserTaskStatus) Value() (driver.Value, error) { return int64(s), nil }
func (s *UserTaskStatus) Scan(src interface{}) (err error) {
	*s, err = userTaskStatuses.scan(src)
	return err
}

// LeaseStatus

type LeaseStatus int8

const (
	LeaseActive LeaseStatus = iota + 1
	LeaseEnded
	LeaseTerminated
)

var leaseStatuses = newEnumTable[LeaseStatus]("lease status",
	LeaseActive, "active",
	LeaseEnded, "ended",
	LeaseTerminated, "terminated",
)

func ParseLeaseStatus(s string) (LeaseStatus, error) { return leaseStatuses.parse(s) }
func (s LeaseStatus) String() string                 { return leaseStatuses.str(s) }
func (s LeaseStatus) MarshalJSON() ([]byte, error)   { return json.Marshal(s.String()) }
func (s *LeaseStatus) UnmarshalJSON(b []byte) (err error) {
	*s, err = leaseStatuses.unmarshal(b)
	return err
}
func (s LeaseStatus) Value() (driver.Value, error) { return int64(s), nil }
func (s *LeaseStatus) Scan(src interface{}) (err error) {
	*s, err = leaseStatuses.scan(src)
	return err
}

// PermissionKind names one flag of a RoleMenuPermission row.

type PermissionKind int8

const (
	PermView PermissionKind = iota + 1
	PermCreate
	PermUpdate
	PermDelete
	PermConfirm
)

var permissionKinds = newEnumTable[PermissionKind]("permission kind",
	PermView, "view",
	PermCreate, "create",
	PermUpdate, "update",
	PermDelete, "delete",
	PermConfirm, "confirm",
)

func ParsePermissionKind(s string) (PermissionKind, error) { return permissionKinds.parse(s) }
func (k PermissionKind) String() string                    { return permissionKinds.str(k) }
func (k PermissionKind) MarshalJSON() ([]byte, error)      { return json.Marshal(k.String()) }
func (k *PermissionKind) UnmarshalJSON(b []byte) (err error) {
	*k, err = permissionKinds.unmarshal(b)
	return err
}
func (k PermissionKind) Value() (driver.Value, error) { return int64(k), nil }
func (k *PermissionKind) Scan(src interface{}) (err error) {
	*k, err = permissionKinds.scan(src)
	return err
}
