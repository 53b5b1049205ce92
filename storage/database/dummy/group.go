package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/darasa-io/darasa/core"
	"github.com/darasa-io/darasa/core/group"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) query() []group.Group {
	groups := make([]group.Group, 0, len(repo.db.group.table))
	for _, grp := range repo.db.group.table {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

func (repo *groupRepository) CheckNameUniqueness(ctx context.Context, name string, excludedGroups []group.Group, exec ...core.DBExecutor) error {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	excluded := make(map[int]bool, len(excludedGroups))
	for _, grp := range excludedGroups {
		excluded[grp.ID] = true
	}
	for _, grp := range repo.query() {
		if !excluded[grp.ID] && strings.EqualFold(grp.Name, name) {
			return group.ErrGroupExists
		}
	}
	return nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	repo.db.group.seq++
	grp.ID = repo.db.group.seq
	repo.db.group.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) QueryGroups(ctx context.Context, filter *group.QueryFilter, ordering []core.DBOrdering, page core.Pagination, exec ...core.DBExecutor) ([]group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	groups := repo.query()
	if filter != nil && filter.Search != "" {
		var filtered []group.Group
		search := strings.ToLower(filter.Search)
		for _, grp := range groups {
			if strings.Contains(strings.ToLower(grp.Name), search) {
				filtered = append(filtered, grp)
			}
		}
		groups = filtered
	}
	return groups, nil
}

func (repo *groupRepository) GetGroup(ctx context.Context, id int, exec ...core.DBExecutor) (group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	if grp, ok := repo.db.group.table[id]; ok {
		return *grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	if _, ok := repo.db.group.table[grp.ID]; !ok {
		return group.Group{}, group.ErrNotFound
	}
	repo.db.group.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) DeleteGroup(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.group.Lock()
	delete(repo.db.group.table, id)
	repo.db.group.Unlock()

	repo.db.groupCourse.Lock()
	for gcID, gc := range repo.db.groupCourse.table {
		if gc.GroupID == id {
			delete(repo.db.groupCourse.table, gcID)
		}
	}
	repo.db.groupCourse.Unlock()
	return nil
}

func (repo *groupRepository) GetGroupCourse(ctx context.Context, groupID, courseID int, exec ...core.DBExecutor) (group.GroupCourse, error) {
	repo.db.groupCourse.RLock()
	defer repo.db.groupCourse.RUnlock()

	for _, gc := range repo.db.groupCourse.table {
		if gc.GroupID == groupID && gc.CourseID == courseID {
			return *gc, nil
		}
	}
	return group.GroupCourse{}, group.ErrGroupCourseNotFound
}

func (repo *groupRepository) CreateGroupCourse(ctx context.Context, gc group.GroupCourse, exec ...core.DBExecutor) (group.GroupCourse, error) {
	repo.db.groupCourse.Lock()
	defer repo.db.groupCourse.Unlock()

	repo.db.groupCourse.seq++
	gc.ID = repo.db.groupCourse.seq
	repo.db.groupCourse.table[gc.ID] = &gc
	return gc, nil
}

func (repo *groupRepository) QueryGroupCourses(ctx context.Context, groupID int, exec ...core.DBExecutor) ([]group.GroupCourse, error) {
	repo.db.groupCourse.RLock()
	defer repo.db.groupCourse.RUnlock()

	var gcs []group.GroupCourse
	for _, gc := range repo.db.groupCourse.table {
		if gc.GroupID == groupID {
			gcs = append(gcs, *gc)
		}
	}
	sort.Slice(gcs, func(i, j int) bool { return gcs[i].ID < gcs[j].ID })
	return gcs, nil
}
