package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/pkg/pagination"

	"gorm.io/gorm"
)

type fakeTx struct{ calls int }

func (f *fakeTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (f *fakeAudit) Log(_ context.Context, e *model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAudit) List(context.Context, repository.AuditFilter, pagination.Params) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeAudit) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeNotifier struct{ events []string }

func (f *fakeNotifier) Publish(eventType string, _ interface{}) {
	f.events = append(f.events, eventType)
}

type fakeCache struct{ invalidated []uint }

func (f *fakeCache) Invalidate(roleID uint) { f.invalidated = append(f.invalidated, roleID) }

type fakeCounter struct{ total float64 }

func (f *fakeCounter) Add(v float64) { f.total += v }

// --- users ---

type fakeUsers struct {
	byID   map[uint]*model.User
	nextID uint
	err    error
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint]*model.User{}, nextID: 100}
	for i := range users {
		u := users[i]
		f.byID[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByIDWithRole(ctx context.Context, id uint) (*model.User, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) List(context.Context, repository.UserFilter, pagination.Params) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint, hash string) error {
	u, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uint, at time.Time) error {
	if u, ok := f.byID[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// --- roles ---

type fakeRoles struct {
	byID   map[uint]*model.Role
	nextID uint
	finds  int
}

func newFakeRoles(roles ...model.Role) *fakeRoles {
	f := &fakeRoles{byID: map[uint]*model.Role{}, nextID: 100}
	for i := range roles {
		r := roles[i]
		f.byID[r.ID] = &r
	}
	return f
}

func (f *fakeRoles) Create(_ context.Context, r *model.Role) error {
	f.nextID++
	r.ID = f.nextID
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeRoles) Update(_ context.Context, r *model.Role) error {
	cp := *r
	f.byID[r.ID] = &cp
	return nil
}

func (f *fakeRoles) Delete(_ context.Context, id uint) error {
	if _, ok := f.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRoles) FindByID(_ context.Context, id uint) (*model.Role, error) {
	f.finds++
	r, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoles) FindByName(_ context.Context, name string) (*model.Role, error) {
	for _, r := range f.byID {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoles) ListAll(context.Context) ([]model.Role, error) {
	var out []model.Role
	for _, r := range f.byID {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- menus ---

type fakeMenus struct {
	items  []model.Menu
	nextID uint
}

func newFakeMenus(menus ...model.Menu) *fakeMenus {
	return &fakeMenus{items: menus, nextID: 1000}
}

func (f *fakeMenus) Create(_ context.Context, m *model.Menu) error {
	f.nextID++
	m.ID = f.nextID
	f.items = append(f.items, *m)
	return nil
}

func (f *fakeMenus) Update(_ context.Context, m *model.Menu) error {
	for i := range f.items {
		if f.items[i].ID == m.ID {
			f.items[i] = *m
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMenus) Delete(_ context.Context, id uint) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMenus) FindByID(_ context.Context, id uint) (*model.Menu, error) {
	for _, m := range f.items {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMenus) FindByURL(_ context.Context, url string) (*model.Menu, error) {
	var best *model.Menu
	for i := range f.items {
		m := f.items[i]
		if m.URL == url && m.IsActive && (best == nil || m.ID < best.ID) {
			best = &m
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (f *fakeMenus) ListAll(context.Context) ([]model.Menu, error) {
	out := make([]model.Menu, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeMenus) CountChildren(_ context.Context, id uint) (int64, error) {
	var n int64
	for _, m := range f.items {
		if m.ParentID != nil && *m.ParentID == id {
			n++
		}
	}
	return n, nil
}

// --- grants ---

type fakeGrants struct {
	rows      []model.RoleMenuPermission
	listCalls int
	onList    func() // runs once per load, after the rows are read
}

func (f *fakeGrants) ListByRole(_ context.Context, roleID uint) ([]model.RoleMenuPermission, error) {
	f.listCalls++
	if f.onList != nil {
		defer f.onList()
	}
	var out []model.RoleMenuPermission
	for _, r := range f.rows {
		if r.RoleID == roleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeGrants) FindByRoleAndMenu(_ context.Context, roleID, menuID uint) (*model.RoleMenuPermission, error) {
	for _, r := range f.rows {
		if r.RoleID == roleID && r.MenuID == menuID {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGrants) DeleteByRole(_ context.Context, roleID uint) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.RoleID != roleID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeGrants) BulkCreate(_ context.Context, rows []model.RoleMenuPermission) error {
	f.rows = append(f.rows, rows...)
	return nil
}

// --- task groups and user tasks ---

type fakeTaskGroups struct {
	groups []model.TaskGroup
}

func (f *fakeTaskGroups) Create(_ context.Context, g *model.TaskGroup) error {
	g.ID = uint(len(f.groups) + 1)
	f.groups = append(f.groups, *g)
	return nil
}

func (f *fakeTaskGroups) Update(_ context.Context, g *model.TaskGroup) error {
	for i := range f.groups {
		if f.groups[i].ID == g.ID {
			f.groups[i] = *g
		}
	}
	return nil
}

func (f *fakeTaskGroups) Delete(context.Context, uint) error { return nil }

func (f *fakeTaskGroups) FindByID(_ context.Context, id uint) (*model.TaskGroup, error) {
	for _, g := range f.groups {
		if g.ID == id {
			cp := g
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTaskGroups) FindByIDWithMembers(ctx context.Context, id uint) (*model.TaskGroup, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeTaskGroups) List(context.Context, string, pagination.Params) ([]model.TaskGroup, int64, error) {
	return f.groups, int64(len(f.groups)), nil
}

func (f *fakeTaskGroups) ListActiveWithMembers(context.Context) ([]model.TaskGroup, error) {
	var out []model.TaskGroup
	for _, g := range f.groups {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeTaskGroups) ReplaceUsers(_ context.Context, g *model.TaskGroup, users []model.User) error {
	for i := range f.groups {
		if f.groups[i].ID == g.ID {
			f.groups[i].Users = users
		}
	}
	return nil
}

type fakeUserTasks struct {
	rows       []model.UserTask
	completion []repository.CompletionRow
}

func (f *fakeUserTasks) Update(_ context.Context, ut *model.UserTask) error {
	for i := range f.rows {
		if f.rows[i].ID == ut.ID {
			f.rows[i] = *ut
		}
	}
	return nil
}

func (f *fakeUserTasks) FindByID(_ context.Context, id uint) (*model.UserTask, error) {
	for _, r := range f.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserTasks) BulkCreate(_ context.Context, rows []model.UserTask) error {
	for _, r := range rows {
		r.ID = uint(len(f.rows) + 1)
		f.rows = append(f.rows, r)
	}
	return nil
}

func (f *fakeUserTasks) ExistsForGroupDate(_ context.Context, groupID uint, date string) (bool, error) {
	for _, r := range f.rows {
		if r.TaskGroupID == groupID && r.ScheduledDate == date {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserTasks) List(context.Context, repository.UserTaskFilter, pagination.Params) ([]model.UserTask, int64, error) {
	return f.rows, int64(len(f.rows)), nil
}

func (f *fakeUserTasks) Completion(context.Context, string, string, *uint) ([]repository.CompletionRow, error) {
	return f.completion, nil
}

// --- complaints ---

type fakeComplaints struct {
	rows []model.ComplaintReport
}

func (f *fakeComplaints) Create(_ context.Context, r *model.ComplaintReport) error {
	r.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *r)
	return nil
}

func (f *fakeComplaints) Update(_ context.Context, r *model.ComplaintReport) error {
	for i := range f.rows {
		if f.rows[i].ID == r.ID {
			f.rows[i] = *r
		}
	}
	return nil
}

func (f *fakeComplaints) Delete(context.Context, uint) error { return nil }

func (f *fakeComplaints) FindByID(_ context.Context, id uint) (*model.ComplaintReport, error) {
	for _, r := range f.rows {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeComplaints) List(context.Context, repository.ComplaintFilter, pagination.Params) ([]model.ComplaintReport, int64, error) {
	return f.rows, int64(len(f.rows)), nil
}

// --- payments, tenants, assets, units ---

type fakePayments struct {
	byID    map[uint]*model.Payment
	updated []model.Payment

	due          []model.Payment
	dueFrom      time.Time
	dueTo        time.Time
	overdueCut   time.Time
	reminded     []uint
	markedAt     time.Time
	overdueCount int64
}

func newFakePayments(payments ...model.Payment) *fakePayments {
	f := &fakePayments{byID: map[uint]*model.Payment{}}
	for i := range payments {
		p := payments[i]
		f.byID[p.ID] = &p
	}
	return f
}

func (f *fakePayments) Create(_ context.Context, p *model.Payment) error {
	if f.byID == nil {
		f.byID = map[uint]*model.Payment{}
	}
	p.ID = uint(len(f.byID) + 1)
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePayments) Update(_ context.Context, p *model.Payment) error {
	cp := *p
	f.byID[p.ID] = &cp
	f.updated = append(f.updated, cp)
	return nil
}

func (f *fakePayments) Delete(context.Context, uint) error { return nil }

func (f *fakePayments) FindByID(_ context.Context, id uint) (*model.Payment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) List(context.Context, repository.PaymentFilter, pagination.Params) ([]model.Payment, int64, error) {
	return nil, 0, nil
}

func (f *fakePayments) ListAll(context.Context, repository.PaymentFilter) ([]model.Payment, error) {
	return nil, nil
}

func (f *fakePayments) ListDueForReminder(_ context.Context, from, to time.Time) ([]model.Payment, error) {
	f.dueFrom, f.dueTo = from, to
	return f.due, nil
}

func (f *fakePayments) MarkReminded(_ context.Context, ids []uint, at time.Time) error {
	f.reminded = append(f.reminded, ids...)
	f.markedAt = at
	return nil
}

func (f *fakePayments) MarkOverdue(_ context.Context, before time.Time) (int64, error) {
	f.overdueCut = before
	return f.overdueCount, nil
}

type fakeTenants struct {
	byID map[uint]*model.Tenant
}

func (f *fakeTenants) Create(context.Context, *model.Tenant) error { return nil }
func (f *fakeTenants) Update(context.Context, *model.Tenant) error { return nil }
func (f *fakeTenants) Delete(context.Context, uint) error          { return nil }

func (f *fakeTenants) FindByID(_ context.Context, id uint) (*model.Tenant, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTenants) FindByIDWithLeases(ctx context.Context, id uint) (*model.Tenant, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeTenants) List(context.Context, string, pagination.Params) ([]model.Tenant, int64, error) {
	return nil, 0, nil
}

type fakeAssets struct {
	byID map[uint]*model.Asset
}

func (f *fakeAssets) Create(context.Context, *model.Asset) error { return nil }
func (f *fakeAssets) Update(context.Context, *model.Asset) error { return nil }
func (f *fakeAssets) Delete(context.Context, uint) error         { return nil }

func (f *fakeAssets) FindByID(_ context.Context, id uint) (*model.Asset, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssets) FindByIDWithUnits(ctx context.Context, id uint) (*model.Asset, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeAssets) FindByCode(context.Context, string) (*model.Asset, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAssets) List(context.Context, repository.AssetFilter, pagination.Params) ([]model.Asset, int64, error) {
	return nil, 0, nil
}

type fakeUnits struct {
	created []model.Unit
}

func (f *fakeUnits) Create(_ context.Context, u *model.Unit) error {
	u.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *u)
	return nil
}

func (f *fakeUnits) Update(context.Context, *model.Unit) error { return nil }
func (f *fakeUnits) Delete(context.Context, uint) error        { return nil }

func (f *fakeUnits) FindByID(context.Context, uint) (*model.Unit, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUnits) List(context.Context, repository.UnitFilter, pagination.Params) ([]model.Unit, int64, error) {
	return nil, 0, nil
}

type fakeDashboard struct {
	counts   repository.EntityCounts
	sums     []repository.PaymentSum
	from, to time.Time
}

func (f *fakeDashboard) Counts(context.Context) (*repository.EntityCounts, error) {
	c := f.counts
	return &c, nil
}

func (f *fakeDashboard) PaymentSums(_ context.Context, from, to time.Time) ([]repository.PaymentSum, error) {
	f.from, f.to = from, to
	return f.sums, nil
}
