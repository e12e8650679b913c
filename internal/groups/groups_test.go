package groups

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/playerfinder/playerfinder/internal/apperr"
	"github.com/playerfinder/playerfinder/internal/db"
	"github.com/playerfinder/playerfinder/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type GroupsSuite struct {
	suite.Suite
	conn   *gorm.DB
	svc    *Service
	ctx    context.Context
	master models.User
	player models.User
	group  *models.Group
}

func TestGroupsSuite(t *testing.T) {
	suite.Run(t, new(GroupsSuite))
}

func (s *GroupsSuite) SetupTest() {
	conn, err := db.Open("file:" + filepath.Join(s.T().TempDir(), "groups-test.db"))
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate(conn))

	s.conn = conn
	s.svc = NewService(conn)
	s.ctx = context.Background()
	s.master = s.createUser("master")
	s.player = s.createUser("player")

	group, err := s.svc.Create(s.ctx, s.master.ID, CreateInput{
		Name:        "Curse of Strahd",
		Description: "Gothic horror campaign",
		Schedule:    "Fridays 20h",
		Location:    "Online",
		Chronic:     "ravenloft",
	})
	s.Require().NoError(err)
	s.group = group
}

func (s *GroupsSuite) createUser(name string) models.User {
	user := models.User{Email: name + "@example.com", Username: name, Password: "hash"}
	s.Require().NoError(s.conn.Create(&user).Error)
	return user
}

func (s *GroupsSuite) playerIDs(groupID uint64) []uint64 {
	var rows []models.GroupPlayer
	s.Require().NoError(s.conn.Where("group_id = ?", groupID).Order("user_id").Find(&rows).Error)
	return lo.Map(rows, func(row models.GroupPlayer, _ int) uint64 { return row.UserID })
}

func (s *GroupsSuite) countRequests(groupID uint64) int64 {
	var count int64
	s.Require().NoError(s.conn.Model(&models.GroupRequest{}).Where("group_id = ?", groupID).Count(&count).Error)
	return count
}

func (s *GroupsSuite) TestCreate_MasterIsFirstPlayer() {
	s.Equal(s.master.ID, s.group.Master)
	s.Require().NotNil(s.group.MasterUser)
	s.Equal("master", s.group.MasterUser.Username)
	s.Require().Len(s.group.Players, 1)
	s.Equal(s.master.ID, s.group.Players[0].ID)

	var row models.GroupPlayer
	s.Require().NoError(s.conn.Where("group_id = ? AND user_id = ?", s.group.ID, s.master.ID).First(&row).Error)
	s.Equal(models.RoleMaster, row.Role)
}

func (s *GroupsSuite) TestCreate_Validation() {
	_, err := s.svc.Create(s.ctx, s.master.ID, CreateInput{Name: "only a name"})
	appErr, ok := apperr.As(err)
	s.Require().True(ok)
	s.Equal(http.StatusUnprocessableEntity, appErr.Status)
	s.Equal([]string{"chronic", "description", "location", "schedule"},
		lo.Map(appErr.Fields, func(f apperr.FieldError, _ int) string { return f.Field }))

	other := s.player.ID
	_, err = s.svc.Create(s.ctx, s.master.ID, CreateInput{
		Name: "n", Description: "d", Schedule: "s", Location: "l", Chronic: "c", Master: &other,
	})
	s.Equal(http.StatusUnprocessableEntity, apperr.StatusOf(err))
}

func (s *GroupsSuite) TestUpdate() {
	name := "Tomb of Annihilation"
	updated, err := s.svc.Update(s.ctx, s.master.ID, s.group.ID, UpdateInput{Name: &name})
	s.Require().NoError(err)
	s.Equal(name, updated.Name)
	s.Equal("Online", updated.Location)

	_, err = s.svc.Update(s.ctx, s.player.ID, s.group.ID, UpdateInput{Name: &name})
	s.Equal(http.StatusForbidden, apperr.StatusOf(err))

	_, err = s.svc.Update(s.ctx, s.master.ID, 9999, UpdateInput{Name: &name})
	s.Equal(http.StatusNotFound, apperr.StatusOf(err))

	empty := " "
	_, err = s.svc.Update(s.ctx, s.master.ID, s.group.ID, UpdateInput{Location: &empty})
	s.Equal(http.StatusUnprocessableEntity, apperr.StatusOf(err))
}

func (s *GroupsSuite) TestList_Filters() {
	other := s.createUser("other")
	_, err := s.svc.Create(s.ctx, other.ID, CreateInput{
		Name: "Waterdeep 100% heist", Description: "Urban intrigue", Schedule: "Sundays", Location: "Store", Chronic: "faerun",
	})
	s.Require().NoError(err)

	all, err := s.svc.List(s.ctx, ListFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
	for _, g := range all {
		s.NotNil(g.MasterUser)
		s.NotEmpty(g.Players)
	}

	mine, err := s.svc.List(s.ctx, ListFilter{UserID: s.master.ID})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(s.group.ID, mine[0].ID)

	byText, err := s.svc.List(s.ctx, ListFilter{Text: "GOTHIC"})
	s.Require().NoError(err)
	s.Require().Len(byText, 1)
	s.Equal(s.group.ID, byText[0].ID)

	literal, err := s.svc.List(s.ctx, ListFilter{Text: "100%"})
	s.Require().NoError(err)
	s.Len(literal, 1)

	percent, err := s.svc.List(s.ctx, ListFilter{Text: "%"})
	s.Require().NoError(err)
	s.Len(percent, 1)
}

func (s *GroupsSuite) TestCreateRequest_Pending() {
	req, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)
	s.NotZero(req.ID)
	s.Equal(models.GroupRequestPending, req.Status)
	s.False(req.CreatedAt.IsZero())
	s.Equal([]uint64{s.master.ID}, s.playerIDs(s.group.ID))
}

func (s *GroupsSuite) TestCreateRequest_Duplicate() {
	_, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)

	_, err = s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Equal(http.StatusConflict, apperr.StatusOf(err))
	s.EqualValues(1, s.countRequests(s.group.ID))
}

func (s *GroupsSuite) TestCreateRequest_AlreadyMember() {
	_, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.master.ID)
	s.Equal(http.StatusUnprocessableEntity, apperr.StatusOf(err))
	s.Zero(s.countRequests(s.group.ID))
}

func (s *GroupsSuite) TestCreateRequest_UnknownGroup() {
	_, err := s.svc.CreateRequest(s.ctx, 9999, s.player.ID)
	s.Equal(http.StatusNotFound, apperr.StatusOf(err))
}

func (s *GroupsSuite) TestListPendingRequests() {
	req, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)

	list, err := s.svc.ListPendingRequests(s.ctx, "  "+uintString(s.master.ID))
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(req.ID, list[0].ID)
	s.Require().NotNil(list[0].Group)
	s.Require().NotNil(list[0].User)
	s.Equal(s.group.ID, list[0].Group.ID)
	s.Equal("player", list[0].User.Username)

	for _, filter := range []string{"", "abc", uintString(s.player.ID)} {
		empty, errList := s.svc.ListPendingRequests(s.ctx, filter)
		s.Require().NoError(errList)
		s.NotNil(empty)
		s.Empty(empty, "filter %q", filter)
	}

	_, err = s.svc.AcceptRequest(s.ctx, s.master.ID, s.group.ID, req.ID)
	s.Require().NoError(err)
	afterAccept, err := s.svc.ListPendingRequests(s.ctx, uintString(s.master.ID))
	s.Require().NoError(err)
	s.Empty(afterAccept)
}

func (s *GroupsSuite) TestAcceptRequest() {
	req, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)
	s.NotContains(s.playerIDs(s.group.ID), s.player.ID)

	accepted, err := s.svc.AcceptRequest(s.ctx, s.master.ID, s.group.ID, req.ID)
	s.Require().NoError(err)
	s.Equal(models.GroupRequestAccepted, accepted.Status)
	s.Require().NotNil(accepted.User)
	s.Equal(s.player.ID, accepted.User.ID)
	s.Contains(s.playerIDs(s.group.ID), s.player.ID)

	_, err = s.svc.AcceptRequest(s.ctx, s.master.ID, s.group.ID, req.ID)
	s.Equal(http.StatusConflict, apperr.StatusOf(err))
	s.Equal([]uint64{s.master.ID, s.player.ID}, s.playerIDs(s.group.ID))
}

func (s *GroupsSuite) TestAcceptRequest_Errors() {
	req, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)

	_, err = s.svc.AcceptRequest(s.ctx, s.player.ID, s.group.ID, req.ID)
	s.Equal(http.StatusForbidden, apperr.StatusOf(err))

	_, err = s.svc.AcceptRequest(s.ctx, s.master.ID, s.group.ID, 9999)
	s.Equal(http.StatusNotFound, apperr.StatusOf(err))

	other := s.createUser("other")
	otherGroup, err := s.svc.Create(s.ctx, other.ID, CreateInput{Name: "n", Description: "d", Schedule: "s", Location: "l", Chronic: "c"})
	s.Require().NoError(err)
	_, err = s.svc.AcceptRequest(s.ctx, other.ID, otherGroup.ID, req.ID)
	s.Equal(http.StatusNotFound, apperr.StatusOf(err))

	var stored models.GroupRequest
	s.Require().NoError(s.conn.First(&stored, req.ID).Error)
	s.Equal(models.GroupRequestPending, stored.Status)
	s.NotContains(s.playerIDs(s.group.ID), s.player.ID)
}

func (s *GroupsSuite) TestRejectRequest() {
	req, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)

	s.Equal(http.StatusForbidden, apperr.StatusOf(s.svc.RejectRequest(s.ctx, s.player.ID, s.group.ID, req.ID)))
	s.Require().NoError(s.svc.RejectRequest(s.ctx, s.master.ID, s.group.ID, req.ID))
	s.Zero(s.countRequests(s.group.ID))
	s.Equal(http.StatusNotFound, apperr.StatusOf(s.svc.RejectRequest(s.ctx, s.master.ID, s.group.ID, req.ID)))

	again, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)
	_, err = s.svc.AcceptRequest(s.ctx, s.master.ID, s.group.ID, again.ID)
	s.Require().NoError(err)
	s.Equal(http.StatusConflict, apperr.StatusOf(s.svc.RejectRequest(s.ctx, s.master.ID, s.group.ID, again.ID)))
}

func (s *GroupsSuite) TestRemovePlayer() {
	req, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)
	_, err = s.svc.AcceptRequest(s.ctx, s.master.ID, s.group.ID, req.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.RemovePlayer(s.ctx, s.master.ID, s.group.ID, s.player.ID))
	s.Equal([]uint64{s.master.ID}, s.playerIDs(s.group.ID))
	s.Zero(s.countRequests(s.group.ID))

	_, err = s.svc.Get(s.ctx, s.group.ID)
	s.NoError(err)

	// The removed player may ask to join again.
	_, err = s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.NoError(err)
}

func (s *GroupsSuite) TestRemovePlayer_Master() {
	err := s.svc.RemovePlayer(s.ctx, s.master.ID, s.group.ID, s.master.ID)
	s.Equal(http.StatusBadRequest, apperr.StatusOf(err))
	s.Equal([]uint64{s.master.ID}, s.playerIDs(s.group.ID))
}

func (s *GroupsSuite) TestRemovePlayer_NonMemberIsNoop() {
	s.Require().NoError(s.svc.RemovePlayer(s.ctx, s.master.ID, s.group.ID, s.player.ID))
	s.Equal([]uint64{s.master.ID}, s.playerIDs(s.group.ID))
}

func (s *GroupsSuite) TestRemovePlayer_Errors() {
	s.Equal(http.StatusForbidden, apperr.StatusOf(s.svc.RemovePlayer(s.ctx, s.player.ID, s.group.ID, s.master.ID)))
	s.Equal(http.StatusNotFound, apperr.StatusOf(s.svc.RemovePlayer(s.ctx, s.master.ID, 9999, s.player.ID)))
}

func (s *GroupsSuite) TestDelete() {
	_, err := s.svc.CreateRequest(s.ctx, s.group.ID, s.player.ID)
	s.Require().NoError(err)

	s.Equal(http.StatusForbidden, apperr.StatusOf(s.svc.Delete(s.ctx, s.player.ID, s.group.ID)))
	s.Require().NoError(s.svc.Delete(s.ctx, s.master.ID, s.group.ID))

	_, err = s.svc.Get(s.ctx, s.group.ID)
	s.Equal(http.StatusNotFound, apperr.StatusOf(err))
	s.Empty(s.playerIDs(s.group.ID))
	s.Zero(s.countRequests(s.group.ID))

	s.Equal(http.StatusNotFound, apperr.StatusOf(s.svc.Delete(s.ctx, s.master.ID, s.group.ID)))
}

func TestIsMember(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "member-test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	svc := NewService(conn)

	master := models.User{Email: "m@example.com", Username: "m", Password: "x"}
	require.NoError(t, conn.Create(&master).Error)
	group, err := svc.Create(context.Background(), master.ID, CreateInput{Name: "n", Description: "d", Schedule: "s", Location: "l", Chronic: "c"})
	require.NoError(t, err)

	ok, err := isMember(conn, group.ID, master.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = isMember(conn, group.ID, master.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}
