package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"github.com/bpdavis86/planning-center-backend/backend"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Group is an accessor for one group. Attributes and the settings page
// load lazily and are re-fetched after mutations while AutoRefresh is
// on.
type Group struct {
	ID int64
	// AutoRefresh reloads attributes and the settings page after every
	// mutation. Turn it off while batching settings writes, then call
	// Refresh once.
	AutoRefresh bool
	// Locations is the per-group v1 locations provider.
	Locations *LocationsProvider

	client   *backend.Client
	provider *Provider
	data     *GroupData
	settings *goquery.Document
	deleted  bool
}

func (g *Group) FrontendURL() string {
	return g.provider.frontendURL(g.ID)
}

func (g *Group) APIURL() string {
	return g.provider.apiURL(g.ID)
}

func (g *Group) SettingsURL() string {
	return g.FrontendURL() + "/settings"
}

func (g *Group) MembersURL() string {
	return g.FrontendURL() + "/members"
}

// Deleted reports whether a refresh has observed the group to be gone.
func (g *Group) Deleted() bool {
	return g.deleted
}

// Refresh reloads the group attributes and settings page from the
// server. A 404 marks the group deleted instead of failing.
func (g *Group) Refresh(ctx context.Context) error {
	if g.deleted {
		return nil
	}
	data, err := backend.QueryOne[GroupData](ctx, g.client, g.APIURL(), nil)
	if err != nil {
		if backend.IsNotFound(err) {
			g.deleted = true
			return nil
		}
		return err
	}
	g.data = &data
	return g.refreshSettings(ctx)
}

func (g *Group) autoRefresh(ctx context.Context) error {
	if !g.AutoRefresh {
		return nil
	}
	return g.Refresh(ctx)
}

// ensureData lazily loads attributes; g.data stays nil when the group
// turns out to be deleted.
func (g *Group) ensureData(ctx context.Context) error {
	if g.data != nil || g.deleted {
		return nil
	}
	return g.Refresh(ctx)
}

// Attributes returns the group's API attributes, nil when the group
// has been deleted.
func (g *Group) Attributes(ctx context.Context) (*GroupAttributes, error) {
	if err := g.ensureData(ctx); err != nil {
		return nil, err
	}
	if g.deleted || g.data == nil {
		return nil, nil
	}
	return &g.data.Attributes, nil
}

// Delete removes the group; success is observed through the follow-up
// refresh seeing a 404.
func (g *Group) Delete(ctx context.Context) error {
	_, err := g.client.Delete(ctx, g.FrontendURL(), backend.MutateOptions{
		CSRFPage: g.SettingsURL(),
	})
	if err != nil {
		return err
	}
	return g.autoRefresh(ctx)
}

// linked follows a named link from the group's API record and collects
// every page. A missing link yields nil.
func linked[T any](ctx context.Context, g *Group, name string) ([]T, error) {
	if err := g.ensureData(ctx); err != nil {
		return nil, err
	}
	if g.data == nil {
		return nil, nil
	}
	link := g.data.Links[name]
	if link == "" {
		return nil, nil
	}
	return backend.QueryAll[T](ctx, g.client, link, nil, 0)
}

func (g *Group) Memberships(ctx context.Context) ([]MembershipData, error) {
	return linked[MembershipData](ctx, g, "memberships")
}

func (g *Group) Events(ctx context.Context) ([]EventData, error) {
	return linked[EventData](ctx, g, "events")
}

func (g *Group) Tags(ctx context.Context) ([]TagData, error) {
	return linked[TagData](ctx, g, "tags")
}

// HasTag reports whether the tag with the given id is applied to the
// group.
func (g *Group) HasTag(ctx context.Context, tagID int64) (bool, error) {
	tags, err := g.Tags(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tags {
		id, err := parseID(t.ID)
		if err != nil {
			continue
		}
		if id == tagID {
			return true, nil
		}
	}
	return false, nil
}

// AddTag applies a tag to the group. The vendor's backend happily adds
// the same tag twice, so the duplicate check happens here; existsOK
// downgrades a duplicate to a no-op.
func (g *Group) AddTag(ctx context.Context, tagID int64, existsOK bool) error {
	ctx, span := tracer.Start(ctx, "group:AddTag")
	defer span.End()

	if _, err := g.provider.Tags.Get(ctx, tagID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tag does not exist")
		return fmt.Errorf("tag with id %d could not be found: %w", tagID, err)
	}
	has, err := g.HasTag(ctx, tagID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list group tags")
		return err
	}
	if has {
		if !existsOK {
			err := fmt.Errorf("tag %d already exists on group %d", tagID, g.ID)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}

	form := url.Values{}
	form.Set("group_tag[tag_id]", fmt.Sprintf("%d", tagID))
	_, err = g.client.PostForm(ctx, g.FrontendURL()+"/tags", form, backend.MutateOptions{
		CSRFPage: g.SettingsURL(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tag post failed")
		return err
	}
	return g.autoRefresh(ctx)
}

var tagsScriptDiv = regexp.MustCompile(`^tags_group_`)

// RemoveTag detaches a tag from the group. There is no API for this;
// the deletion URL only exists in JSON embedded in an inline script on
// the settings page.
func (g *Group) RemoveTag(ctx context.Context, tagID int64, missingOK bool) error {
	ctx, span := tracer.Start(ctx, "group:RemoveTag")
	defer span.End()

	has, err := g.HasTag(ctx, tagID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list group tags")
		return err
	}
	if !has {
		if !missingOK {
			err := fmt.Errorf("tag %d does not exist on group %d", tagID, g.ID)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}

	var tagData struct {
		Tags []struct {
			ID  int64  `json:"id"`
			URL string `json:"url"`
		} `json:"tags"`
	}
	if err := g.scriptJSON(ctx, tagsScriptDiv, &tagData); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read tag metadata from settings page")
		return err
	}
	deleteURL := ""
	matches := 0
	for _, t := range tagData.Tags {
		if t.ID == tagID {
			deleteURL = t.URL
			matches++
		}
	}
	if matches != 1 {
		err := fmt.Errorf("error in retrieving tag metadata from frontend, check for interface changes")
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	_, err = g.client.Delete(ctx, deleteURL, backend.MutateOptions{
		CSRFPage: g.SettingsURL(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tag delete failed")
		return err
	}
	return nil
}

// memberAddID resolves the groups-local person id the member add and
// removal forms use, which differs from the account-center person id.
func (g *Group) memberAddID(ctx context.Context, personID int64) (int64, error) {
	body, err := g.client.GetJSON(ctx, g.client.Endpoints.PersonV1API(personID), nil)
	if err != nil {
		return 0, err
	}
	var data personV1Response
	if err := json.Unmarshal(body, &data); err != nil {
		return 0, err
	}
	if len(data.Errors) > 0 {
		return 0, fmt.Errorf("there were errors in the API result: %s", data.Errors)
	}
	if data.AccountCenterID != personID {
		return 0, fmt.Errorf("unexpected API error, ids do not match")
	}
	return data.ID, nil
}

// AddMember adds a person to the group, optionally as a leader.
func (g *Group) AddMember(ctx context.Context, personID int64, leader, notify bool) error {
	addID, err := g.memberAddID(ctx, personID)
	if err != nil {
		return err
	}

	role := RoleMember
	if leader {
		role = RoleLeader
	}
	form := url.Values{}
	form.Set("membership[person_id]", fmt.Sprintf("%d", addID))
	form.Set("membership[role]", role)
	if notify {
		form.Set("notify_member", "1")
	}
	_, err = g.client.PostForm(ctx, g.MembersURL(), form, backend.MutateOptions{
		CSRFPage: g.MembersURL(),
	})
	return err
}

// Member finds the group membership of a person by account-center id,
// nil when the person is not a member.
func (g *Group) Member(ctx context.Context, personID int64) (*MembershipData, error) {
	members, err := g.Memberships(ctx)
	if err != nil {
		return nil, err
	}
	var found *MembershipData
	for i := range members {
		id, err := members[i].Attributes.AccountCenterIdentifier.Int64()
		if err != nil || id != personID {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("more than one member matched id %d, should not occur", personID)
		}
		found = &members[i]
	}
	return found, nil
}

// MemberUpdate carries the changes for UpdateMember; nil fields are
// left alone.
type MemberUpdate struct {
	Leader *bool
	Notify *bool
	// AttendanceTaker is only meaningful on the member role; leaders
	// always take attendance.
	AttendanceTaker *bool
}

// UpdateMember changes a member's role through the front-end role
// form, which wants its authenticity token in the form body rather
// than a header.
func (g *Group) UpdateMember(ctx context.Context, personID int64, update MemberUpdate) error {
	membership, err := g.Member(ctx, personID)
	if err != nil {
		return err
	}
	if membership == nil {
		return fmt.Errorf("person %d is not a member of group %d", personID, g.ID)
	}

	form := url.Values{}
	form.Set("_method", "patch")
	form.Set("utf8", "✓")
	form.Set("commit", "Update role")
	if update.Leader != nil {
		role := RoleMember
		if *update.Leader {
			role = RoleLeader
		}
		form.Set("role", role)
	}
	if update.Notify != nil {
		form.Set("notify_member", boolToIntField(*update.Notify))
	}
	if update.AttendanceTaker != nil {
		// attendance taker must be joined with member status
		if membership.Attributes.Role != RoleLeader && !form.Has("role") {
			form.Set("role", RoleMember)
		}
		if form.Get("role") == RoleMember {
			form.Set("attendance_taker", boolToIntField(*update.AttendanceTaker))
		}
	}

	token, err := g.client.CSRFToken(ctx, g.MembersURL(), false)
	if err != nil {
		return err
	}
	form.Set("authenticity_token", token)

	roleURL := fmt.Sprintf("%s/members/%s/role", g.FrontendURL(), membership.ID)
	_, err = g.client.PostForm(ctx, roleURL, form, backend.MutateOptions{})
	return err
}

// RemoveMember removes a person from the group; missingOK downgrades
// an absent membership to a no-op.
func (g *Group) RemoveMember(ctx context.Context, personID int64, notify, missingOK bool) error {
	membership, err := g.Member(ctx, personID)
	if err != nil {
		return err
	}
	if membership == nil {
		if missingOK {
			return nil
		}
		return fmt.Errorf("person %d is not a member of group %d", personID, g.ID)
	}

	// removal wants the same groups-local id used when adding
	addID, err := g.memberAddID(ctx, personID)
	if err != nil {
		return err
	}
	token, err := g.client.CSRFToken(ctx, g.MembersURL(), false)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("notify_member", boolToIntField(notify))
	form.Set("authenticity_token", token)
	form.Set("membership[person_id]", fmt.Sprintf("%d", addID))

	removalURL := fmt.Sprintf("%s/members/%s/removal", g.FrontendURL(), membership.ID)
	_, err = g.client.PostForm(ctx, removalURL, form, backend.MutateOptions{})
	return err
}

func boolToIntField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
