package service

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scrcorp/taskmanager-server/internal/domain"
)

// In-memory repository fakes shared by the service tests.

type memOrgRepo struct {
	orgs map[uuid.UUID]*domain.Organization
}

func newMemOrgRepo() *memOrgRepo {
	return &memOrgRepo{orgs: map[uuid.UUID]*domain.Organization{}}
}

func (m *memOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	m.orgs[org.ID] = org
	return nil
}

func (m *memOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Organization, error) {
	if o, ok := m.orgs[id]; ok {
		return o, nil
	}
	return nil, domain.NotFound("organization")
}

func (m *memOrgRepo) Update(_ context.Context, org *domain.Organization) error {
	if _, ok := m.orgs[org.ID]; !ok {
		return domain.NotFound("organization")
	}
	org.UpdatedAt = time.Now()
	m.orgs[org.ID] = org
	return nil
}

func (m *memOrgRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	o, ok := m.orgs[id]
	if !ok {
		return domain.NotFound("organization")
	}
	o.IsActive = false
	return nil
}

func (m *memOrgRepo) List(_ context.Context) ([]*domain.Organization, error) {
	out := []*domain.Organization{}
	for _, o := range m.orgs {
		out = append(out, o)
	}
	return out, nil
}

type memBrandRepo struct {
	brands map[uuid.UUID]*domain.Brand
}

func newMemBrandRepo() *memBrandRepo {
	return &memBrandRepo{brands: map[uuid.UUID]*domain.Brand{}}
}

func (m *memBrandRepo) Create(_ context.Context, b *domain.Brand) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.brands[b.ID] = b
	return nil
}

func (m *memBrandRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.Brand, error) {
	if b, ok := m.brands[id]; ok && b.OrganizationID == orgID {
		return b, nil
	}
	return nil, domain.NotFound("brand")
}

func (m *memBrandRepo) Update(_ context.Context, orgID uuid.UUID, b *domain.Brand) error {
	if cur, ok := m.brands[b.ID]; !ok || cur.OrganizationID != orgID {
		return domain.NotFound("brand")
	}
	m.brands[b.ID] = b
	return nil
}

func (m *memBrandRepo) Deactivate(_ context.Context, orgID, id uuid.UUID) error {
	b, ok := m.brands[id]
	if !ok || b.OrganizationID != orgID {
		return domain.NotFound("brand")
	}
	b.IsActive = false
	return nil
}

func (m *memBrandRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]*domain.Brand, error) {
	out := []*domain.Brand{}
	for _, b := range m.brands {
		if b.OrganizationID == orgID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memShiftRepo struct {
	shifts map[uuid.UUID]*domain.Shift
	brands *memBrandRepo
}

func newMemShiftRepo(brands *memBrandRepo) *memShiftRepo {
	return &memShiftRepo{shifts: map[uuid.UUID]*domain.Shift{}, brands: brands}
}

func (m *memShiftRepo) inOrg(orgID uuid.UUID, s *domain.Shift) bool {
	b, ok := m.brands.brands[s.BrandID]
	return ok && b.OrganizationID == orgID
}

func (m *memShiftRepo) Create(_ context.Context, s *domain.Shift) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.shifts[s.ID] = s
	return nil
}

func (m *memShiftRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.Shift, error) {
	if s, ok := m.shifts[id]; ok && m.inOrg(orgID, s) {
		return s, nil
	}
	return nil, domain.NotFound("shift")
}

func (m *memShiftRepo) Update(_ context.Context, orgID uuid.UUID, s *domain.Shift) error {
	if cur, ok := m.shifts[s.ID]; !ok || !m.inOrg(orgID, cur) {
		return domain.NotFound("shift")
	}
	m.shifts[s.ID] = s
	return nil
}

func (m *memShiftRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	if s, ok := m.shifts[id]; ok && m.inOrg(orgID, s) {
		delete(m.shifts, id)
		return nil
	}
	return domain.NotFound("shift")
}

func (m *memShiftRepo) ListByBrand(_ context.Context, orgID, brandID uuid.UUID) ([]*domain.Shift, error) {
	out := []*domain.Shift{}
	for _, s := range m.shifts {
		if s.BrandID == brandID && m.inOrg(orgID, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

type memPositionRepo struct {
	positions map[uuid.UUID]*domain.Position
	brands    *memBrandRepo
}

func newMemPositionRepo(brands *memBrandRepo) *memPositionRepo {
	return &memPositionRepo{positions: map[uuid.UUID]*domain.Position{}, brands: brands}
}

func (m *memPositionRepo) inOrg(orgID uuid.UUID, p *domain.Position) bool {
	b, ok := m.brands.brands[p.BrandID]
	return ok && b.OrganizationID == orgID
}

func (m *memPositionRepo) Create(_ context.Context, p *domain.Position) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.positions[p.ID] = p
	return nil
}

func (m *memPositionRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.Position, error) {
	if p, ok := m.positions[id]; ok && m.inOrg(orgID, p) {
		return p, nil
	}
	return nil, domain.NotFound("position")
}

func (m *memPositionRepo) Update(_ context.Context, orgID uuid.UUID, p *domain.Position) error {
	if cur, ok := m.positions[p.ID]; !ok || !m.inOrg(orgID, cur) {
		return domain.NotFound("position")
	}
	m.positions[p.ID] = p
	return nil
}

func (m *memPositionRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	if p, ok := m.positions[id]; ok && m.inOrg(orgID, p) {
		delete(m.positions, id)
		return nil
	}
	return domain.NotFound("position")
}

func (m *memPositionRepo) ListByBrand(_ context.Context, orgID, brandID uuid.UUID) ([]*domain.Position, error) {
	out := []*domain.Position{}
	for _, p := range m.positions {
		if p.BrandID == brandID && m.inOrg(orgID, p) {
			out = append(out, p)
		}
	}
	return out, nil
}

type memRoleRepo struct {
	roles map[uuid.UUID]*domain.Role
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{roles: map[uuid.UUID]*domain.Role{}}
}

func (m *memRoleRepo) Create(_ context.Context, r *domain.Role) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	for _, existing := range m.roles {
		if existing.OrganizationID == r.OrganizationID && (existing.Name == r.Name || existing.Level == r.Level) {
			return domain.Conflict("role already exists")
		}
	}
	m.roles[r.ID] = r
	return nil
}

func (m *memRoleRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.Role, error) {
	if r, ok := m.roles[id]; ok && r.OrganizationID == orgID {
		return r, nil
	}
	return nil, domain.NotFound("role")
}

func (m *memRoleRepo) Update(_ context.Context, orgID uuid.UUID, r *domain.Role) error {
	if cur, ok := m.roles[r.ID]; !ok || cur.OrganizationID != orgID {
		return domain.NotFound("role")
	}
	m.roles[r.ID] = r
	return nil
}

func (m *memRoleRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	if r, ok := m.roles[id]; ok && r.OrganizationID == orgID {
		delete(m.roles, id)
		return nil
	}
	return domain.NotFound("role")
}

func (m *memRoleRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]*domain.Role, error) {
	out := []*domain.Role{}
	for _, r := range m.roles {
		if r.OrganizationID == orgID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range m.users {
		if existing.OrganizationID == u.OrganizationID && existing.Username == u.Username {
			return domain.Conflict("user already exists")
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.User, error) {
	if u, ok := m.users[id]; ok && u.OrganizationID == orgID {
		return u, nil
	}
	return nil, domain.NotFound("user")
}

func (m *memUserRepo) GetByUsername(_ context.Context, orgID uuid.UUID, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.OrganizationID == orgID && u.Username == username {
			return u, nil
		}
	}
	return nil, domain.NotFound("user")
}

func (m *memUserRepo) Update(_ context.Context, orgID uuid.UUID, u *domain.User) error {
	if cur, ok := m.users[u.ID]; !ok || cur.OrganizationID != orgID {
		return domain.NotFound("user")
	}
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m *memUserRepo) Deactivate(_ context.Context, orgID, id uuid.UUID) error {
	u, ok := m.users[id]
	if !ok || u.OrganizationID != orgID {
		return domain.NotFound("user")
	}
	u.IsActive = false
	return nil
}

func (m *memUserRepo) ListByOrganization(_ context.Context, orgID uuid.UUID) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.users {
		if u.OrganizationID == orgID {
			out = append(out, u)
		}
	}
	return out, nil
}

type memChecklistRepo struct {
	templates map[uuid.UUID]*domain.ChecklistTemplate
	brands    *memBrandRepo
}

func newMemChecklistRepo(brands *memBrandRepo) *memChecklistRepo {
	return &memChecklistRepo{templates: map[uuid.UUID]*domain.ChecklistTemplate{}, brands: brands}
}

func (m *memChecklistRepo) inOrg(orgID uuid.UUID, t *domain.ChecklistTemplate) bool {
	b, ok := m.brands.brands[t.BrandID]
	return ok && b.OrganizationID == orgID
}

func (m *memChecklistRepo) CreateTemplate(_ context.Context, t *domain.ChecklistTemplate) error {
	for _, existing := range m.templates {
		if existing.IsActive && t.IsActive &&
			existing.BrandID == t.BrandID && existing.ShiftID == t.ShiftID && existing.PositionID == t.PositionID {
			return domain.Conflict("checklist template already exists")
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	for i := range t.Items {
		if t.Items[i].ID == uuid.Nil {
			t.Items[i].ID = uuid.New()
		}
		t.Items[i].TemplateID = t.ID
	}
	m.templates[t.ID] = t
	return nil
}

func (m *memChecklistRepo) GetTemplate(_ context.Context, orgID, id uuid.UUID) (*domain.ChecklistTemplate, error) {
	if t, ok := m.templates[id]; ok && m.inOrg(orgID, t) {
		return t, nil
	}
	return nil, domain.NotFound("checklist template")
}

func (m *memChecklistRepo) ActiveTemplateForCombo(_ context.Context, orgID, brandID, shiftID, positionID uuid.UUID) (*domain.ChecklistTemplate, error) {
	for _, t := range m.templates {
		if t.IsActive && t.BrandID == brandID && t.ShiftID == shiftID && t.PositionID == positionID && m.inOrg(orgID, t) {
			return t, nil
		}
	}
	return nil, domain.NotFound("checklist template")
}

func (m *memChecklistRepo) ListTemplates(_ context.Context, orgID uuid.UUID, brandID *uuid.UUID) ([]*domain.ChecklistTemplate, error) {
	out := []*domain.ChecklistTemplate{}
	for _, t := range m.templates {
		if !m.inOrg(orgID, t) {
			continue
		}
		if brandID != nil && t.BrandID != *brandID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memChecklistRepo) UpdateTemplate(_ context.Context, orgID uuid.UUID, t *domain.ChecklistTemplate) error {
	if cur, ok := m.templates[t.ID]; !ok || !m.inOrg(orgID, cur) {
		return domain.NotFound("checklist template")
	}
	m.templates[t.ID] = t
	return nil
}

func (m *memChecklistRepo) DeactivateTemplate(_ context.Context, orgID, id uuid.UUID) error {
	t, ok := m.templates[id]
	if !ok || !m.inOrg(orgID, t) {
		return domain.NotFound("checklist template")
	}
	t.IsActive = false
	return nil
}

func (m *memChecklistRepo) AddItem(_ context.Context, orgID uuid.UUID, item *domain.ChecklistTemplateItem) error {
	t, ok := m.templates[item.TemplateID]
	if !ok || !m.inOrg(orgID, t) {
		return domain.NotFound("checklist template")
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	t.Items = append(t.Items, *item)
	return nil
}

func (m *memChecklistRepo) UpdateItem(_ context.Context, orgID uuid.UUID, item *domain.ChecklistTemplateItem) error {
	t, ok := m.templates[item.TemplateID]
	if !ok || !m.inOrg(orgID, t) {
		return domain.NotFound("checklist template")
	}
	for i := range t.Items {
		if t.Items[i].ID == item.ID {
			t.Items[i] = *item
			return nil
		}
	}
	return domain.NotFound("checklist item")
}

func (m *memChecklistRepo) ReorderItems(_ context.Context, orgID, templateID uuid.UUID, orderedItemIDs []uuid.UUID) error {
	t, ok := m.templates[templateID]
	if !ok || !m.inOrg(orgID, t) {
		return domain.NotFound("checklist template")
	}
	for pos, id := range orderedItemIDs {
		found := false
		for i := range t.Items {
			if t.Items[i].ID == id {
				t.Items[i].SortOrder = pos + 1
				found = true
				break
			}
		}
		if !found {
			return domain.NotFound("checklist item")
		}
	}
	return nil
}

type memAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uuid.UUID]*domain.WorkAssignment
}

func newMemAssignmentRepo() *memAssignmentRepo {
	return &memAssignmentRepo{assignments: map[uuid.UUID]*domain.WorkAssignment{}}
}

func cloneAssignment(a *domain.WorkAssignment) *domain.WorkAssignment {
	raw, _ := json.Marshal(a)
	var out domain.WorkAssignment
	_ = json.Unmarshal(raw, &out)
	return &out
}

func (m *memAssignmentRepo) Create(_ context.Context, a *domain.WorkAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.BrandID == a.BrandID && existing.ShiftID == a.ShiftID &&
			existing.PositionID == a.PositionID && existing.UserID == a.UserID &&
			existing.WorkDate.Equal(a.WorkDate) {
			return domain.Conflict("work assignment already exists")
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.assignments[a.ID] = cloneAssignment(a)
	return nil
}

func (m *memAssignmentRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.WorkAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assignments[id]; ok && a.OrganizationID == orgID {
		return cloneAssignment(a), nil
	}
	return nil, domain.NotFound("work assignment")
}

func (m *memAssignmentRepo) matches(a *domain.WorkAssignment, f domain.AssignmentFilter) bool {
	if f.BrandID != nil && a.BrandID != *f.BrandID {
		return false
	}
	if f.UserID != nil && a.UserID != *f.UserID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.DateFrom != nil && a.WorkDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && a.WorkDate.After(*f.DateTo) {
		return false
	}
	return true
}

func (m *memAssignmentRepo) List(_ context.Context, orgID uuid.UUID, f domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.WorkAssignment{}
	for _, a := range m.assignments {
		if a.OrganizationID == orgID && m.matches(a, f) {
			out = append(out, cloneAssignment(a))
		}
	}
	return out, len(out), nil
}

func (m *memAssignmentRepo) ListByUser(ctx context.Context, orgID, userID uuid.UUID, f domain.AssignmentFilter) ([]*domain.WorkAssignment, int, error) {
	f.UserID = &userID
	return m.List(ctx, orgID, f)
}

func (m *memAssignmentRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.assignments[id]; ok && a.OrganizationID == orgID {
		delete(m.assignments, id)
		return nil
	}
	return domain.NotFound("work assignment")
}

func (m *memAssignmentRepo) UpdateWithLock(_ context.Context, orgID, id uuid.UUID, fn func(a *domain.WorkAssignment) error) (*domain.WorkAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.assignments[id]
	if !ok || stored.OrganizationID != orgID {
		return nil, domain.NotFound("work assignment")
	}
	working := cloneAssignment(stored)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = time.Now()
	m.assignments[id] = cloneAssignment(working)
	return working, nil
}

func (m *memAssignmentRepo) MarkMissed(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.assignments {
		if a.WorkDate.Before(before) && !a.Status.Terminal() {
			a.Status = domain.StatusMissed
			n++
		}
	}
	return n, nil
}

type memTaskRepo struct {
	tasks map[uuid.UUID]*domain.AdditionalTask
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[uuid.UUID]*domain.AdditionalTask{}}
}

func (m *memTaskRepo) Create(_ context.Context, t *domain.AdditionalTask) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *memTaskRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.AdditionalTask, error) {
	if t, ok := m.tasks[id]; ok && t.OrganizationID == orgID {
		return t, nil
	}
	return nil, domain.NotFound("task")
}

func (m *memTaskRepo) Update(_ context.Context, orgID uuid.UUID, t *domain.AdditionalTask) error {
	if cur, ok := m.tasks[t.ID]; !ok || cur.OrganizationID != orgID {
		return domain.NotFound("task")
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *memTaskRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	if t, ok := m.tasks[id]; ok && t.OrganizationID == orgID {
		delete(m.tasks, id)
		return nil
	}
	return domain.NotFound("task")
}

func (m *memTaskRepo) List(_ context.Context, orgID uuid.UUID, userID *uuid.UUID, status domain.TaskStatus) ([]*domain.AdditionalTask, error) {
	out := []*domain.AdditionalTask{}
	for _, t := range m.tasks {
		if t.OrganizationID != orgID {
			continue
		}
		if userID != nil && t.UserID != *userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type memAnnouncementRepo struct {
	anns map[uuid.UUID]*domain.Announcement
}

func newMemAnnouncementRepo() *memAnnouncementRepo {
	return &memAnnouncementRepo{anns: map[uuid.UUID]*domain.Announcement{}}
}

func (m *memAnnouncementRepo) Create(_ context.Context, a *domain.Announcement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	m.anns[a.ID] = a
	return nil
}

func (m *memAnnouncementRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*domain.Announcement, error) {
	if a, ok := m.anns[id]; ok && a.OrganizationID == orgID {
		return a, nil
	}
	return nil, domain.NotFound("announcement")
}

func (m *memAnnouncementRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	if a, ok := m.anns[id]; ok && a.OrganizationID == orgID {
		delete(m.anns, id)
		return nil
	}
	return domain.NotFound("announcement")
}

func (m *memAnnouncementRepo) List(_ context.Context, orgID uuid.UUID, brandID *uuid.UUID, page, perPage int) ([]*domain.Announcement, int, error) {
	out := []*domain.Announcement{}
	for _, a := range m.anns {
		if a.OrganizationID != orgID {
			continue
		}
		if brandID != nil && a.BrandID != nil && *a.BrandID != *brandID {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

type memNotificationRepo struct {
	notifications []*domain.Notification
	failCreate    bool
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{}
}

func (m *memNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if m.failCreate {
		return domain.Conflict("storage unavailable")
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *memNotificationRepo) ListByUser(_ context.Context, orgID, userID uuid.UUID, page, perPage int) ([]*domain.Notification, int, error) {
	out := []*domain.Notification{}
	for _, n := range m.notifications {
		if n.OrganizationID == orgID && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (m *memNotificationRepo) ListUnreadSince(_ context.Context, orgID, userID uuid.UUID, after domain.NotificationCursor) ([]*domain.Notification, error) {
	out := []*domain.Notification{}
	for _, n := range m.notifications {
		if n.OrganizationID == orgID && n.UserID == userID && !n.IsRead && after.Precedes(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (m *memNotificationRepo) UnreadCount(_ context.Context, orgID, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.OrganizationID == orgID && n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memNotificationRepo) MarkRead(_ context.Context, orgID, userID, id uuid.UUID) error {
	for _, n := range m.notifications {
		if n.ID == id && n.OrganizationID == orgID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return domain.NotFound("notification")
}

func (m *memNotificationRepo) MarkAllRead(_ context.Context, orgID, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.OrganizationID == orgID && n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

// recordingNotifier captures emitted notifications for assertions.
type recordingNotifier struct {
	emitted []*domain.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, orgID, userID uuid.UUID, notificationType, referenceType string, referenceID uuid.UUID, message string) {
	r.emitted = append(r.emitted, &domain.Notification{
		OrganizationID: orgID,
		UserID:         userID,
		Type:           notificationType,
		ReferenceType:  referenceType,
		ReferenceID:    referenceID,
		Message:        message,
	})
}
