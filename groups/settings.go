package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/bpdavis86/planning-center-backend/backend"
	"github.com/bpdavis86/planning-center-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Settings fields missing from the v2 API are scraped from the
// rendered settings page: checkbox/radio/select state, React props
// JSON, or JSON embedded in inline CDATA scripts. All of those are
// fragile against front-end changes, hence the "check for UI changes"
// errors.

func (g *Group) refreshSettings(ctx context.Context) error {
	doc, err := g.client.GetDocument(ctx, g.SettingsURL())
	if err != nil {
		return err
	}
	g.settings = doc
	return nil
}

func (g *Group) settingsDoc(ctx context.Context) (*goquery.Document, error) {
	if g.settings == nil {
		if err := g.refreshSettings(ctx); err != nil {
			return nil, err
		}
	}
	return g.settings, nil
}

func (g *Group) checkboxStatus(ctx context.Context, name string) (bool, error) {
	doc, err := g.settingsDoc(ctx)
	if err != nil {
		return false, err
	}
	check := doc.Find(fmt.Sprintf(`.checkbox[name='%s']`, name))
	if check.Length() == 0 {
		return false, fmt.Errorf("could not find checkbox element %s, check for UI changes", name)
	}
	_, checked := check.First().Attr("checked")
	return checked, nil
}

func (g *Group) radioValue(ctx context.Context, name string) (string, error) {
	doc, err := g.settingsDoc(ctx)
	if err != nil {
		return "", err
	}
	radios := doc.Find(fmt.Sprintf(`.radio[name='%s']`, name))
	if radios.Length() == 0 {
		return "", fmt.Errorf("could not find radio elements with name %s, check for UI changes", name)
	}
	value := ""
	found := false
	radios.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if _, checked := s.Attr("checked"); checked {
			value = s.AttrOr("value", "")
			found = true
			return false
		}
		return true
	})
	if !found {
		return "", fmt.Errorf("could not find a checked radio button with name %s, check for UI changes", name)
	}
	return value, nil
}

// selectValue returns nil when the valueless placeholder option is
// selected.
func (g *Group) selectValue(ctx context.Context, name string) (*string, error) {
	doc, err := g.settingsDoc(ctx)
	if err != nil {
		return nil, err
	}
	sel := doc.Find(fmt.Sprintf(`.select[name='%s']`, name))
	if sel.Length() == 0 {
		return nil, fmt.Errorf("could not find select element with name %s, check for UI changes", name)
	}
	selected := sel.Find(`[selected=selected]`)
	if selected.Length() == 0 {
		return nil, nil
	}
	value := selected.First().AttrOr("value", "")
	return &value, nil
}

// reactProps finds the AppProvider element whose data-react-props JSON
// names the given component and decodes the props into out.
func (g *Group) reactProps(ctx context.Context, component string, out any) error {
	doc, err := g.settingsDoc(ctx)
	if err != nil {
		return err
	}
	raw := ""
	doc.Find(`[data-react-class='AppProvider']`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		props := s.AttrOr("data-react-props", "")
		var probe struct {
			Component string `json:"component"`
		}
		if json.Unmarshal([]byte(props), &probe) != nil {
			return true
		}
		if probe.Component == component {
			raw = props
			return false
		}
		return true
	})
	if raw == "" {
		return fmt.Errorf("could not find data for component %s in React data for frontend, check for UI changes", component)
	}
	return json.Unmarshal([]byte(raw), out)
}

var componentJSONRegex = regexp.MustCompile(`(?s)Components\.[^,\s]+,\s*(\{.*?})\),\s*document\.getElementById`)

// scriptJSON extracts the JSON argument of a React createElement call
// embedded in an inline CDATA script inside the div whose id matches
// divID.
func (g *Group) scriptJSON(ctx context.Context, divID *regexp.Regexp, out any) error {
	doc, err := g.settingsDoc(ctx)
	if err != nil {
		return err
	}

	script := ""
	doc.Find("div[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !divID.MatchString(s.AttrOr("id", "")) {
			return true
		}
		nodes := s.Find("script").Nodes
		if len(nodes) == 0 {
			return true
		}
		script = htmlutil.GetText(nodes[0])
		return false
	})
	if script == "" {
		return fmt.Errorf("could not find script div %s, check for UI changes", divID)
	}

	js := htmlutil.ExtractCDATA(script)
	if js == "" {
		return fmt.Errorf("could not parse JS script, check for UI changes")
	}
	groups := componentJSONRegex.FindStringSubmatch(js)
	if len(groups) < 2 {
		return fmt.Errorf("could not parse JSON from JS script, check for UI changes")
	}
	return json.Unmarshal([]byte(groups[1]), out)
}

type settingOptions struct {
	// url defaults to the settings page.
	url      string
	patch    bool
	put      bool
	autosave bool
}

// updateSetting posts a Rails-style settings form with the CSRF token
// of the settings page.
func (g *Group) updateSetting(ctx context.Context, form url.Values, opts settingOptions) error {
	if opts.patch {
		form.Set("_method", "patch")
	} else if opts.put {
		form.Set("_method", "put")
	}
	if opts.autosave {
		form.Set("__autosave__", "")
	}
	target := opts.url
	if target == "" {
		target = g.SettingsURL()
	}
	_, err := g.client.PostForm(ctx, target, form, backend.MutateOptions{
		CSRFPage: g.SettingsURL(),
	})
	if err != nil {
		return err
	}
	return g.autoRefresh(ctx)
}

func formValues(key, value string) url.Values {
	form := url.Values{}
	form.Set(key, value)
	return form
}

// --- API-backed settings ---

func (g *Group) Name(ctx context.Context) (string, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return "", err
	}
	return attrs.Name, nil
}

func (g *Group) SetName(ctx context.Context, name string) error {
	return g.updateSetting(ctx, formValues("group[name]", name), settingOptions{
		url:   g.FrontendURL(),
		patch: true, autosave: true,
	})
}

func (g *Group) Description(ctx context.Context) (*string, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return nil, err
	}
	return attrs.Description, nil
}

func (g *Group) SetDescription(ctx context.Context, description string) error {
	return g.updateSetting(ctx, formValues("group[description]", description), settingOptions{
		put: true, autosave: true,
	})
}

func (g *Group) Schedule(ctx context.Context) (*string, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return nil, err
	}
	return attrs.Schedule, nil
}

func (g *Group) SetSchedule(ctx context.Context, schedule string) error {
	return g.updateSetting(ctx, formValues("group[schedule]", schedule), settingOptions{
		put: true, autosave: true,
	})
}

func (g *Group) GroupType(ctx context.Context) (GroupType, error) {
	if err := g.ensureData(ctx); err != nil {
		return GroupTypeUnique, err
	}
	if g.data == nil {
		return GroupTypeUnique, nil
	}
	rel, ok := g.data.Relationships["group_type"]
	if !ok || rel.Data == nil {
		return GroupTypeUnique, fmt.Errorf("group %d has no group_type relationship", g.ID)
	}
	id, err := parseID(rel.Data.ID)
	if err != nil {
		return GroupTypeUnique, err
	}
	return groupTypeFromID(id), nil
}

func (g *Group) SetGroupType(ctx context.Context, groupType GroupType) error {
	return g.updateSetting(ctx, formValues("group[group_type_id]", groupType.formValue()), settingOptions{
		url:   g.FrontendURL(),
		patch: true, autosave: true,
	})
}

func (g *Group) EnrollmentStrategy(ctx context.Context) (EnrollmentStrategy, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return "", err
	}
	return attrs.EnrollmentStrategy, nil
}

func (g *Group) SetEnrollmentStrategy(ctx context.Context, strategy EnrollmentStrategy) error {
	return g.updateSetting(ctx, formValues("group[public_enrollment]", string(strategy)), settingOptions{
		put: true, autosave: true,
	})
}

func (g *Group) ContactEmail(ctx context.Context) (*string, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return nil, err
	}
	return attrs.ContactEmail, nil
}

func (g *Group) SetContactEmail(ctx context.Context, email string) error {
	return g.updateSetting(ctx, formValues("group[contact_email]", email), settingOptions{
		patch: true, autosave: true,
	})
}

// PubliclyVisible is derived from the presence of a public church
// center URL, which the API only sets for visible groups.
func (g *Group) PubliclyVisible(ctx context.Context) (bool, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return false, err
	}
	return attrs.PublicChurchCenterWebURL != nil, nil
}

func (g *Group) SetPubliclyVisible(ctx context.Context, visible bool) error {
	return g.updateSetting(ctx, formValues("group[publicly_visible]", strconv.FormatBool(visible)), settingOptions{
		put: true, autosave: true,
	})
}

func (g *Group) PublicChurchCenterWebURL(ctx context.Context) (*string, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return nil, err
	}
	return attrs.PublicChurchCenterWebURL, nil
}

func (g *Group) LocationTypePreference(ctx context.Context) (LocationType, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return "", err
	}
	return attrs.LocationTypePreference, nil
}

func (g *Group) SetLocationTypePreference(ctx context.Context, pref LocationType) error {
	return g.updateSetting(ctx, formValues("group[location_type_preference]", string(pref)), settingOptions{
		put: true, autosave: true,
	})
}

// LocationID returns the id of the group's physical location, nil when
// none is set.
func (g *Group) LocationID(ctx context.Context) (*int64, error) {
	if err := g.ensureData(ctx); err != nil {
		return nil, err
	}
	if g.data == nil {
		return nil, nil
	}
	rel, ok := g.data.Relationships["location"]
	if !ok || rel.Data == nil {
		return nil, nil
	}
	id, err := parseID(rel.Data.ID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// SetLocationID points the group at a location; only ids from the v1
// locations API seem to be valid here. nil clears the location.
func (g *Group) SetLocationID(ctx context.Context, id *int64) error {
	value := ""
	if id != nil {
		value = strconv.FormatInt(*id, 10)
	}
	return g.updateSetting(ctx, formValues("group[location_id]", value), settingOptions{
		patch: true, autosave: true,
	})
}

func (g *Group) VirtualLocationURL(ctx context.Context) (*string, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return nil, err
	}
	return attrs.VirtualLocationURL, nil
}

func (g *Group) SetVirtualLocationURL(ctx context.Context, rawurl string) error {
	return g.updateSetting(ctx, formValues("group[virtual_location_url]", rawurl), settingOptions{
		patch: true, autosave: true,
	})
}

func (g *Group) EventsVisibility(ctx context.Context) (EventsVisibility, error) {
	attrs, err := g.Attributes(ctx)
	if err != nil || attrs == nil {
		return "", err
	}
	return attrs.EventsVisibility, nil
}

func (g *Group) SetEventsVisibility(ctx context.Context, visibility EventsVisibility) error {
	return g.updateSetting(ctx, formValues("group[events_visibility]", string(visibility)), settingOptions{
		put: true, autosave: true,
	})
}

// --- UI-scraped settings (no API coverage) ---

// PubliclyDisplayMeetingSchedule reads the checkbox state from the
// settings page.
func (g *Group) PubliclyDisplayMeetingSchedule(ctx context.Context) (bool, error) {
	return g.checkboxStatus(ctx, "group[publicly_display_meeting_schedule]")
}

func (g *Group) SetPubliclyDisplayMeetingSchedule(ctx context.Context, on bool) error {
	return g.updateSetting(ctx, formValues("group[publicly_display_meeting_schedule]", boolToIntField(on)), settingOptions{
		put: true, autosave: true,
	})
}

const eventReminderComponent = "Components.GroupSettingsEventReminderToggle"

type eventReminderProps struct {
	AutomatedRemindersEnabled bool `json:"automatedRemindersEnabled"`
	ScheduleOffset            int  `json:"scheduleOffset"`
}

// DefaultEventAutomatedRemindersEnabled reads the "Send reminder
// emails" toggle from embedded React props.
func (g *Group) DefaultEventAutomatedRemindersEnabled(ctx context.Context) (bool, error) {
	var props eventReminderProps
	if err := g.reactProps(ctx, eventReminderComponent, &props); err != nil {
		return false, err
	}
	return props.AutomatedRemindersEnabled, nil
}

func (g *Group) SetDefaultEventAutomatedRemindersEnabled(ctx context.Context, on bool) error {
	return g.updateSetting(ctx, formValues("group[default_event_automated_reminders_enabled]", strconv.FormatBool(on)), settingOptions{
		patch: true, autosave: true,
	})
}

// DefaultEventAutomatedRemindersScheduleOffset returns the number of
// days before an event that reminder emails go out. The UI stores the
// offset in seconds.
func (g *Group) DefaultEventAutomatedRemindersScheduleOffset(ctx context.Context) (int, error) {
	var props eventReminderProps
	if err := g.reactProps(ctx, eventReminderComponent, &props); err != nil {
		return 0, err
	}
	return props.ScheduleOffset / 86400, nil
}

// SetDefaultEventAutomatedRemindersScheduleOffset accepts 1 to 10
// days, matching the bounds of the settings form.
func (g *Group) SetDefaultEventAutomatedRemindersScheduleOffset(ctx context.Context, days int) error {
	if days < 1 || days > 10 {
		return fmt.Errorf("number of days must be between 1 and 10")
	}
	seconds := days * 86400
	return g.updateSetting(ctx, formValues("group[default_event_automated_reminders_schedule_offset]", strconv.Itoa(seconds)), settingOptions{
		patch: true, autosave: true,
	})
}

func (g *Group) LeaderNameVisibleOnPublicPage(ctx context.Context) (bool, error) {
	return g.checkboxStatus(ctx, "group[leader_name_visible_on_public_page]")
}

// SetLeaderNameVisibleOnPublicPage sets the UI option "List leader's
// name publicly".
func (g *Group) SetLeaderNameVisibleOnPublicPage(ctx context.Context, on bool) error {
	return g.updateSetting(ctx, formValues("group[leader_name_visible_on_public_page]", boolToIntField(on)), settingOptions{
		put: true, autosave: true,
	})
}

func (g *Group) CommunicationEnabled(ctx context.Context) (bool, error) {
	return g.checkboxStatus(ctx, "group[communication_enabled]")
}

// SetCommunicationEnabled sets the UI option "Enable Group Messaging".
func (g *Group) SetCommunicationEnabled(ctx context.Context, on bool) error {
	return g.updateSetting(ctx, formValues("group[communication_enabled]", boolToIntField(on)), settingOptions{
		put: true, autosave: true,
	})
}

// MembersCanCreateForumTopics reads the UI option "Who can create new
// messages?"; true corresponds to "Members and leaders".
func (g *Group) MembersCanCreateForumTopics(ctx context.Context) (bool, error) {
	value, err := g.radioValue(ctx, "group[members_can_create_forum_topics]")
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

func (g *Group) SetMembersCanCreateForumTopics(ctx context.Context, on bool) error {
	return g.updateSetting(ctx, formValues("group[members_can_create_forum_topics]", strconv.FormatBool(on)), settingOptions{
		put: true, autosave: true,
	})
}

var enrollmentScriptDiv = regexp.MustCompile(`^enrollment_settings_group_`)

type enrollmentSettings struct {
	EnrollmentOpenUntil     *string `json:"enrollmentOpenUntil"`
	EnrollmentLimit         *int    `json:"enrollmentLimit"`
	MemberLimitMaximumAlert *int    `json:"memberLimitMaximumAlert"`
}

func (g *Group) enrollmentSettings(ctx context.Context) (enrollmentSettings, error) {
	var settings enrollmentSettings
	err := g.scriptJSON(ctx, enrollmentScriptDiv, &settings)
	return settings, err
}

// EnrollmentOpenUntil reads the UI option "Auto-close enrollment on",
// nil when off.
func (g *Group) EnrollmentOpenUntil(ctx context.Context) (*time.Time, error) {
	settings, err := g.enrollmentSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.EnrollmentOpenUntil == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *settings.EnrollmentOpenUntil)
	if err != nil {
		t, err = time.Parse(time.RFC3339, *settings.EnrollmentOpenUntil)
	}
	if err != nil {
		return nil, fmt.Errorf("unparseable enrollment date %q: %w", *settings.EnrollmentOpenUntil, err)
	}
	return &t, nil
}

// SetEnrollmentOpenUntil sets the date at which enrollment closes, nil
// for off.
func (g *Group) SetEnrollmentOpenUntil(ctx context.Context, date *time.Time) error {
	value := ""
	if date != nil {
		value = date.Format("2006-01-02")
	}
	return g.updateSetting(ctx, formValues("group[enrollment_open_until]", value), settingOptions{
		put: true, autosave: true,
	})
}

// EnrollmentLimit reads the UI option "Auto-close if enrollment number
// reaches", nil when off.
func (g *Group) EnrollmentLimit(ctx context.Context) (*int, error) {
	settings, err := g.enrollmentSettings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.EnrollmentLimit, nil
}

func (g *Group) SetEnrollmentLimit(ctx context.Context, limit *int) error {
	value := ""
	if limit != nil {
		value = strconv.Itoa(*limit)
	}
	return g.updateSetting(ctx, formValues("group[enrollment_limit]", value), settingOptions{
		put: true, autosave: true,
	})
}

// MemberLimitMaximumAlert reads the UI option "Create alert if group
// membership exceeds", nil when off.
func (g *Group) MemberLimitMaximumAlert(ctx context.Context) (*int, error) {
	settings, err := g.enrollmentSettings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.MemberLimitMaximumAlert, nil
}

func (g *Group) SetMemberLimitMaximumAlert(ctx context.Context, limit *int) error {
	value := ""
	if limit != nil {
		value = strconv.Itoa(*limit)
	}
	return g.updateSetting(ctx, formValues("group[member_limit_maximum_alert]", value), settingOptions{
		put: true, autosave: true,
	})
}

func (g *Group) RequestEventAttendanceFromLeaders(ctx context.Context) (bool, error) {
	return g.checkboxStatus(ctx, "group[request_event_attendance_from_leaders]")
}

func (g *Group) SetRequestEventAttendanceFromLeaders(ctx context.Context, on bool) error {
	return g.updateSetting(ctx, formValues("group[request_event_attendance_from_leaders]", boolToIntField(on)), settingOptions{
		put: true, autosave: true,
	})
}

// AttendanceReplyToPersonID reads the reply-to selection for
// attendance emails, nil when unset.
func (g *Group) AttendanceReplyToPersonID(ctx context.Context) (*int64, error) {
	value, err := g.selectValue(ctx, "group[attendance_reply_to_person_id]")
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	id, err := strconv.ParseInt(*value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (g *Group) SetAttendanceReplyToPersonID(ctx context.Context, id *int64) error {
	value := ""
	if id != nil {
		value = strconv.FormatInt(*id, 10)
	}
	return g.updateSetting(ctx, formValues("group[attendance_reply_to_person_id]", value), settingOptions{
		put: true, autosave: true,
	})
}

func (g *Group) LeadersCanSearchPeopleDatabase(ctx context.Context) (bool, error) {
	return g.checkboxStatus(ctx, "group[leaders_can_search_people_database]")
}

func (g *Group) SetLeadersCanSearchPeopleDatabase(ctx context.Context, on bool) error {
	return g.updateSetting(ctx, formValues("group[leaders_can_search_people_database]", boolToIntField(on)), settingOptions{
		put: true, autosave: true,
	})
}
