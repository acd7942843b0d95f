package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/mattn/go-sqlite3"

	"bulkops/internal/types"
)

// SQLiteStore persists entities in a migrated SQLite database. Natural keys
// are unique case-insensitively through NOCASE columns.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func mapDBError(err error, field string) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return takenError(field)
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("store query failed").
		WithCause(err)
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapDBError(err, "")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapDBError(err, "")
	}
	return nil
}

const userColumns = "id, login, first_name, last_name, mail, admin, identity_url, status"

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	var status string
	err := row.Scan(&user.ID, &user.Login, &user.FirstName, &user.LastName, &user.Mail, &user.Admin, &user.IdentityURL, &status)
	user.Status = types.PrincipalStatus(status)
	return user, err
}

func (s *SQLiteStore) findUser(ctx context.Context, where string, arg any) (types.User, bool, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM principals WHERE kind = 'user' AND "+where, arg)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.User{}, false, nil
	}
	if err != nil {
		return types.User{}, false, mapDBError(err, "")
	}
	return user, true, nil
}

func (s *SQLiteStore) FindUserByID(ctx context.Context, id int64) (types.User, bool, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *SQLiteStore) FindUserByLogin(ctx context.Context, login string) (types.User, bool, error) {
	return s.findUser(ctx, "login = ?", strings.TrimSpace(login))
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user types.User) (types.User, error) {
	if verr := validateEntity(user); verr != nil {
		return types.User{}, verr
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO principals (kind, login, first_name, last_name, mail, admin, identity_url, status)
		 VALUES ('user', ?, ?, ?, ?, ?, ?, ?)`,
		user.Login, user.FirstName, user.LastName, user.Mail, user.Admin, user.IdentityURL, string(user.Status))
	if err != nil {
		return types.User{}, mapDBError(err, "Login")
	}
	user.ID, err = res.LastInsertId()
	return user, mapDBError(err, "")
}

func (s *SQLiteStore) FindGroupByName(ctx context.Context, name string) (types.Group, bool, error) {
	var group types.Group
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_name FROM principals WHERE kind = 'group' AND group_name = ?", strings.TrimSpace(name)).
		Scan(&group.ID, &group.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Group{}, false, nil
	}
	if err != nil {
		return types.Group{}, false, mapDBError(err, "")
	}
	return group, true, nil
}

func (s *SQLiteStore) CreateGroup(ctx context.Context, group types.Group) (types.Group, error) {
	if verr := validateEntity(group); verr != nil {
		return types.Group{}, verr
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO principals (kind, group_name) VALUES ('group', ?)", group.Name)
	if err != nil {
		return types.Group{}, mapDBError(err, "Name")
	}
	group.ID, err = res.LastInsertId()
	return group, mapDBError(err, "")
}

func (s *SQLiteStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapDBError(err, "")
	}
	return true, nil
}

func (s *SQLiteStore) GroupHasUser(ctx context.Context, groupID int64, userID int64) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM group_users WHERE group_id = ? AND user_id = ?", groupID, userID)
}

func (s *SQLiteStore) AddUserToGroup(ctx context.Context, groupID int64, userID int64) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO group_users (group_id, user_id) VALUES (?, ?)", groupID, userID)
	return mapDBError(err, "")
}

func (s *SQLiteStore) FindRoleByName(ctx context.Context, name string) (types.Role, bool, error) {
	var role types.Role
	var kind string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, kind, builtin, assignable FROM roles WHERE name = ?", strings.TrimSpace(name)).
		Scan(&role.ID, &role.Name, &kind, &role.Builtin, &role.Assignable)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Role{}, false, nil
	}
	if err != nil {
		return types.Role{}, false, mapDBError(err, "")
	}
	role.Kind = types.RoleKind(kind)
	return role, true, nil
}

func (s *SQLiteStore) CreateRole(ctx context.Context, role types.Role) (types.Role, error) {
	if verr := validateEntity(role); verr != nil {
		return types.Role{}, verr
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO roles (name, kind, builtin, assignable) VALUES (?, ?, ?, ?)",
		role.Name, string(role.Kind), role.Builtin, role.Assignable)
	if err != nil {
		return types.Role{}, mapDBError(err, "Name")
	}
	role.ID, err = res.LastInsertId()
	return role, mapDBError(err, "")
}

func (s *SQLiteStore) PrincipalHasGlobalRole(ctx context.Context, principalID int64, roleID int64) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM principal_roles WHERE principal_id = ? AND role_id = ?", principalID, roleID)
}

func (s *SQLiteStore) GrantGlobalRole(ctx context.Context, principalID int64, roleID int64) error {
	global, err := s.exists(ctx, "SELECT 1 FROM roles WHERE id = ? AND kind = 'global'", roleID)
	if err != nil {
		return err
	}
	if !global {
		return &types.ValidationError{Messages: []string{"Role is not a global role."}}
	}
	_, err = s.db.ExecContext(ctx, "INSERT OR IGNORE INTO principal_roles (principal_id, role_id) VALUES (?, ?)", principalID, roleID)
	return mapDBError(err, "")
}

const projectColumns = "id, identifier, name, parent_id, description, has_status, status_code, status_explanation, public, active"

func (s *SQLiteStore) scanProjects(ctx context.Context, rows *sql.Rows) ([]types.Project, error) {
	defer rows.Close()
	var projects []types.Project
	for rows.Next() {
		var project types.Project
		var parentID sql.NullInt64
		var hasStatus bool
		var status types.ProjectStatus
		if err := rows.Scan(&project.ID, &project.Identifier, &project.Name, &parentID, &project.Description,
			&hasStatus, &status.Code, &status.Explanation, &project.Public, &project.Active); err != nil {
			return nil, mapDBError(err, "")
		}
		if parentID.Valid {
			id := parentID.Int64
			project.ParentID = &id
		}
		if hasStatus {
			project.Status = &status
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "")
	}
	for i := range projects {
		if err := s.loadProjectLists(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (s *SQLiteStore) loadProjectLists(ctx context.Context, project *types.Project) error {
	modules, err := queryList[string](ctx, s.db, "SELECT name FROM project_modules WHERE project_id = ? ORDER BY position", project.ID)
	if err != nil {
		return err
	}
	typeIDs, err := queryList[int64](ctx, s.db, "SELECT type_id FROM project_types WHERE project_id = ? ORDER BY position", project.ID)
	if err != nil {
		return err
	}
	fieldIDs, err := queryList[int64](ctx, s.db, "SELECT custom_field_id FROM project_custom_fields WHERE project_id = ? ORDER BY position", project.ID)
	if err != nil {
		return err
	}
	project.EnabledModules, project.TypeIDs, project.CustomFieldIDs = modules, typeIDs, fieldIDs
	return nil
}

func queryList[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "")
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		var value T
		if err := rows.Scan(&value); err != nil {
			return nil, mapDBError(err, "")
		}
		out = append(out, value)
	}
	return out, mapDBError(rows.Err(), "")
}

func (s *SQLiteStore) findProject(ctx context.Context, where string, arg any) (types.Project, bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE "+where, arg)
	if err != nil {
		return types.Project{}, false, mapDBError(err, "")
	}
	projects, err := s.scanProjects(ctx, rows)
	if err != nil || len(projects) == 0 {
		return types.Project{}, false, err
	}
	return projects[0], true, nil
}

func (s *SQLiteStore) FindProjectByID(ctx context.Context, id int64) (types.Project, bool, error) {
	return s.findProject(ctx, "id = ?", id)
}

func (s *SQLiteStore) FindProjectByIdentifier(ctx context.Context, identifier string) (types.Project, bool, error) {
	return s.findProject(ctx, "identifier = ?", strings.TrimSpace(identifier))
}

func (s *SQLiteStore) CreateProject(ctx context.Context, project types.Project) (types.Project, error) {
	if verr := validateEntity(project); verr != nil {
		return types.Project{}, verr
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		status := types.ProjectStatus{}
		if project.Status != nil {
			status = *project.Status
		}
		var parentID any
		if project.ParentID != nil {
			parentID = *project.ParentID
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO projects (identifier, name, parent_id, description, has_status, status_code, status_explanation, public, active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project.Identifier, project.Name, parentID, project.Description, project.Status != nil,
			status.Code, status.Explanation, project.Public, project.Active)
		if err != nil {
			return mapDBError(err, "Identifier")
		}
		if project.ID, err = res.LastInsertId(); err != nil {
			return mapDBError(err, "")
		}
		return writeProjectLists(ctx, tx, project.ID, types.ProjectPatch{
			EnabledModules: project.EnabledModules, SetModules: true,
			TypeIDs: project.TypeIDs, SetTypes: true,
			CustomFieldIDs: project.CustomFieldIDs, SetFields: true,
		})
	})
	if err != nil {
		return types.Project{}, err
	}
	return project, nil
}

func writeProjectLists(ctx context.Context, tx *sql.Tx, projectID int64, patch types.ProjectPatch) error {
	if patch.SetModules {
		if err := replaceList(ctx, tx, "project_modules", "name", projectID, patch.EnabledModules); err != nil {
			return err
		}
	}
	if patch.SetTypes {
		if err := replaceList(ctx, tx, "project_types", "type_id", projectID, patch.TypeIDs); err != nil {
			return err
		}
	}
	if patch.SetFields {
		if err := replaceList(ctx, tx, "project_custom_fields", "custom_field_id", projectID, patch.CustomFieldIDs); err != nil {
			return err
		}
	}
	return nil
}

func replaceList[T any](ctx context.Context, tx *sql.Tx, table string, column string, projectID int64, values []T) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE project_id = ?", table), projectID); err != nil {
		return mapDBError(err, "")
	}
	insert := fmt.Sprintf("INSERT OR IGNORE INTO %s (project_id, position, %s) VALUES (?, ?, ?)", table, column)
	for position, value := range values {
		if _, err := tx.ExecContext(ctx, insert, projectID, position, value); err != nil {
			return mapDBError(err, "")
		}
	}
	return nil
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, id int64, patch types.ProjectPatch) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var sets []string
		var args []any
		if patch.Description != nil {
			sets, args = append(sets, "description = ?"), append(args, *patch.Description)
		}
		if patch.Public != nil {
			sets, args = append(sets, "public = ?"), append(args, *patch.Public)
		}
		if patch.ClearStatus {
			sets = append(sets, "has_status = 0", "status_code = ''", "status_explanation = ''")
		}
		if patch.Status != nil {
			sets = append(sets, "has_status = 1", "status_code = ?", "status_explanation = ?")
			args = append(args, patch.Status.Code, patch.Status.Explanation)
		}
		if len(sets) > 0 {
			res, err := tx.ExecContext(ctx, "UPDATE projects SET "+strings.Join(sets, ", ")+" WHERE id = ?", append(args, id)...)
			if err != nil {
				return mapDBError(err, "")
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return &types.ValidationError{Messages: []string{"Project does not exist."}}
			}
		}
		return writeProjectLists(ctx, tx, id, patch)
	})
}

func (s *SQLiteStore) ActiveChildren(ctx context.Context, parentID int64) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE parent_id = ? AND active = 1 ORDER BY id", parentID)
	if err != nil {
		return nil, mapDBError(err, "")
	}
	return s.scanProjects(ctx, rows)
}

// CopyAssociation duplicates versions, categories or opaque artifacts of one
// kind from one project into another inside a single transaction. Items are
// inserted one statement at a time so a rejected item leaves the rest in
// place.
func (s *SQLiteStore) CopyAssociation(ctx context.Context, fromID int64, toID int64, kind types.AssociationKind) ([]string, error) {
	var messages []string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM projects WHERE id = ?)", toID).Scan(&exists); err != nil {
			return mapDBError(err, "")
		}
		if !exists {
			return &types.ValidationError{Messages: []string{"Project does not exist."}}
		}
		items, err := listCopyItems(ctx, tx, kind, fromID)
		if err != nil {
			return err
		}
		insert := copyInsertQuery(kind)
		for _, item := range items {
			if item.invalid != nil {
				messages = append(messages, itemMessages(kind, item.title, item.invalid.Messages)...)
				continue
			}
			_, err := tx.ExecContext(ctx, insert, toID, item.id)
			if err == nil {
				continue
			}
			mapped := mapDBError(err, "Name")
			var verr *types.ValidationError
			if !errors.As(mapped, &verr) {
				return mapped
			}
			messages = append(messages, itemMessages(kind, item.title, verr.Messages)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// copyItem is a source row with the outcome of the same entity validation
// the in-memory store applies before copying.
type copyItem struct {
	id      int64
	title   string
	invalid *types.ValidationError
}

func copyInsertQuery(kind types.AssociationKind) string {
	switch kind {
	case types.AssociationVersions:
		return `INSERT INTO versions (project_id, name, description, start_date, effective_date, status, sharing)
			SELECT ?, name, description, start_date, effective_date, status, sharing FROM versions WHERE id = ?`
	case types.AssociationCategories:
		return "INSERT INTO categories (project_id, name) SELECT ?, name FROM categories WHERE id = ?"
	default:
		return `INSERT INTO project_artifacts (project_id, kind, title, body)
			SELECT ?, kind, title, body FROM project_artifacts WHERE id = ?`
	}
}

func listCopyItems(ctx context.Context, tx *sql.Tx, kind types.AssociationKind, fromID int64) ([]copyItem, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch kind {
	case types.AssociationVersions:
		rows, err = tx.QueryContext(ctx, "SELECT "+versionColumns+" FROM versions WHERE project_id = ? ORDER BY id", fromID)
	case types.AssociationCategories:
		rows, err = tx.QueryContext(ctx, "SELECT id, project_id, name FROM categories WHERE project_id = ? ORDER BY id", fromID)
	default:
		rows, err = tx.QueryContext(ctx,
			"SELECT id, project_id, kind, title, body FROM project_artifacts WHERE project_id = ? AND kind = ? ORDER BY id",
			fromID, string(kind))
	}
	if err != nil {
		return nil, mapDBError(err, "")
	}
	defer rows.Close()
	var items []copyItem
	for rows.Next() {
		item, err := scanCopyItem(rows, kind)
		if err != nil {
			return nil, mapDBError(err, "")
		}
		items = append(items, item)
	}
	return items, mapDBError(rows.Err(), "")
}

func scanCopyItem(rows *sql.Rows, kind types.AssociationKind) (copyItem, error) {
	switch kind {
	case types.AssociationVersions:
		version, err := scanVersion(rows)
		if err != nil {
			return copyItem{}, err
		}
		return copyItem{id: version.ID, title: version.Name, invalid: validateEntity(version)}, nil
	case types.AssociationCategories:
		var category types.Category
		if err := rows.Scan(&category.ID, &category.ProjectID, &category.Name); err != nil {
			return copyItem{}, err
		}
		return copyItem{id: category.ID, title: category.Name, invalid: validateEntity(category)}, nil
	default:
		var (
			artifact types.Artifact
			itemKind string
		)
		if err := rows.Scan(&artifact.ID, &artifact.ProjectID, &itemKind, &artifact.Title, &artifact.Body); err != nil {
			return copyItem{}, err
		}
		artifact.Kind = types.AssociationKind(itemKind)
		return copyItem{id: artifact.ID, title: artifact.Title, invalid: validateEntity(artifact)}, nil
	}
}

// AddArtifact stores an opaque piece of project content.
func (s *SQLiteStore) AddArtifact(ctx context.Context, artifact types.Artifact) (types.Artifact, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO project_artifacts (project_id, kind, title, body) VALUES (?, ?, ?, ?)",
		artifact.ProjectID, string(artifact.Kind), artifact.Title, artifact.Body)
	if err != nil {
		return types.Artifact{}, mapDBError(err, "")
	}
	artifact.ID, err = res.LastInsertId()
	return artifact, mapDBError(err, "")
}

func (s *SQLiteStore) ProjectArtifacts(ctx context.Context, projectID int64) ([]types.Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project_id, kind, title, body FROM project_artifacts WHERE project_id = ? ORDER BY id", projectID)
	if err != nil {
		return nil, mapDBError(err, "")
	}
	defer rows.Close()
	var out []types.Artifact
	for rows.Next() {
		var artifact types.Artifact
		var kind string
		if err := rows.Scan(&artifact.ID, &artifact.ProjectID, &kind, &artifact.Title, &artifact.Body); err != nil {
			return nil, mapDBError(err, "")
		}
		artifact.Kind = types.AssociationKind(kind)
		out = append(out, artifact)
	}
	return out, mapDBError(rows.Err(), "")
}

func (s *SQLiteStore) FindMembership(ctx context.Context, principalID int64, projectID int64) (types.Membership, bool, error) {
	membership := types.Membership{PrincipalID: principalID, ProjectID: projectID}
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM members WHERE principal_id = ? AND project_id = ?", principalID, projectID).
		Scan(&membership.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Membership{}, false, nil
	}
	if err != nil {
		return types.Membership{}, false, mapDBError(err, "")
	}
	membership.RoleIDs, err = queryList[int64](ctx, s.db, "SELECT role_id FROM member_roles WHERE member_id = ? ORDER BY rowid", membership.ID)
	if err != nil {
		return types.Membership{}, false, err
	}
	return membership, true, nil
}

func (s *SQLiteStore) CreateMembership(ctx context.Context, membership types.Membership) (types.Membership, error) {
	if len(membership.RoleIDs) == 0 {
		return types.Membership{}, &types.ValidationError{Messages: []string{"Roles need to be assigned."}}
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO members (principal_id, project_id) VALUES (?, ?)",
			membership.PrincipalID, membership.ProjectID)
		if err != nil {
			return mapDBError(err, "User")
		}
		if membership.ID, err = res.LastInsertId(); err != nil {
			return mapDBError(err, "")
		}
		return insertMemberRoles(ctx, tx, membership.ID, membership.RoleIDs)
	})
	if err != nil {
		return types.Membership{}, err
	}
	return membership, nil
}

func insertMemberRoles(ctx context.Context, tx *sql.Tx, memberID int64, roleIDs []int64) error {
	for _, roleID := range roleIDs {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO member_roles (member_id, role_id) VALUES (?, ?)", memberID, roleID); err != nil {
			return mapDBError(err, "")
		}
	}
	return nil
}

func (s *SQLiteStore) UpdateMembershipRoles(ctx context.Context, membershipID int64, roleIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM member_roles WHERE member_id = ?", membershipID); err != nil {
			return mapDBError(err, "")
		}
		return insertMemberRoles(ctx, tx, membershipID, uniqueIDs(roleIDs))
	})
}

const versionColumns = "id, project_id, name, description, start_date, effective_date, status, sharing"

func (s *SQLiteStore) ProjectVersions(ctx context.Context, projectID int64) ([]types.Version, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+versionColumns+" FROM versions WHERE project_id = ? ORDER BY id", projectID)
	if err != nil {
		return nil, mapDBError(err, "")
	}
	defer rows.Close()
	var out []types.Version
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, mapDBError(err, "")
		}
		out = append(out, version)
	}
	return out, mapDBError(rows.Err(), "")
}

func scanVersion(row interface{ Scan(...any) error }) (types.Version, error) {
	var version types.Version
	var start, effective sql.NullString
	var status, sharing string
	err := row.Scan(&version.ID, &version.ProjectID, &version.Name, &version.Description, &start, &effective, &status, &sharing)
	version.StartDate = parseDateFlexible(start.String)
	version.EffectiveDate = parseDateFlexible(effective.String)
	version.Status = types.VersionStatus(status)
	version.Sharing = types.VersionSharing(sharing)
	return version, err
}

func (s *SQLiteStore) CreateVersion(ctx context.Context, version types.Version) (types.Version, error) {
	if verr := validateEntity(version); verr != nil {
		return types.Version{}, verr
	}
	if verr := validateVersionDates(version); verr != nil {
		return types.Version{}, verr
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO versions (project_id, name, description, start_date, effective_date, status, sharing)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		version.ProjectID, version.Name, version.Description, formatDate(version.StartDate), formatDate(version.EffectiveDate),
		string(version.Status), string(version.Sharing))
	if err != nil {
		return types.Version{}, mapDBError(err, "Name")
	}
	version.ID, err = res.LastInsertId()
	return version, mapDBError(err, "")
}

func (s *SQLiteStore) UpdateVersion(ctx context.Context, id int64, patch types.VersionPatch) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		version, err := scanVersion(tx.QueryRowContext(ctx, "SELECT "+versionColumns+" FROM versions WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return &types.ValidationError{Messages: []string{"Version does not exist."}}
		}
		if err != nil {
			return mapDBError(err, "")
		}
		version = applyVersionPatch(version, patch)
		if verr := validateVersionDates(version); verr != nil {
			return verr
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE versions SET description = ?, start_date = ?, effective_date = ?, status = ? WHERE id = ?",
			version.Description, formatDate(version.StartDate), formatDate(version.EffectiveDate), string(version.Status), id)
		return mapDBError(err, "")
	})
}

func (s *SQLiteStore) ProjectCategories(ctx context.Context, projectID int64) ([]types.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, project_id, name FROM categories WHERE project_id = ? ORDER BY id", projectID)
	if err != nil {
		return nil, mapDBError(err, "")
	}
	defer rows.Close()
	var out []types.Category
	for rows.Next() {
		var category types.Category
		if err := rows.Scan(&category.ID, &category.ProjectID, &category.Name); err != nil {
			return nil, mapDBError(err, "")
		}
		out = append(out, category)
	}
	return out, mapDBError(rows.Err(), "")
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, category types.Category) (types.Category, error) {
	if verr := validateEntity(category); verr != nil {
		return types.Category{}, verr
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO categories (project_id, name) VALUES (?, ?)", category.ProjectID, category.Name)
	if err != nil {
		return types.Category{}, mapDBError(err, "Name")
	}
	category.ID, err = res.LastInsertId()
	return category, mapDBError(err, "")
}
