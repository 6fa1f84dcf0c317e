package preferences

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rupamsaini/interviewprep/internal/question"
)

const (
	KeyDailyNotificationEnabled = "daily_notification_enabled"
	KeyNotificationHour         = "notification_hour"
	KeyNotificationMinute       = "notification_minute"
	KeyWeekendModeEnabled       = "weekend_mode_enabled"
	KeyLastExternalGeneration   = "last_external_generation_ms"
	KeyPreferredDifficulty      = "preferred_difficulty"
	KeyPreferredCategory        = "preferred_category"
	KeyAutoDeleteScope          = "auto_delete_scope"
	KeyAutoDeleteScheduled      = "auto_delete_scheduled"
	KeyAutoDeleteHour           = "auto_delete_hour"
	KeyAutoDeleteMinute         = "auto_delete_minute"
	KeySelectedTopics           = "selected_topics"
	KeyDatasetImported          = "dataset_imported"
)

var (
	ErrUnknownKey   = errors.New("unknown preference")
	ErrInvalidValue = errors.New("invalid preference value")
)

type kind int

const (
	kindBool kind = iota
	kindInt
	kindString
	// kindTopics is a comma separated list of known categories.
	kindTopics
)

type definition struct {
	kind kind
	def  string
	// min and max bound kindInt values.
	min, max int64
}

var definitions = map[string]definition{
	KeyDailyNotificationEnabled: {kind: kindBool, def: "true"},
	KeyNotificationHour:         {kind: kindInt, def: "9", min: 0, max: 23},
	KeyNotificationMinute:       {kind: kindInt, def: "0", min: 0, max: 59},
	KeyWeekendModeEnabled:       {kind: kindBool, def: "true"},
	KeyLastExternalGeneration:   {kind: kindInt, def: "0", min: 0, max: 1<<63 - 1},
	KeyPreferredDifficulty:      {kind: kindString, def: question.All},
	KeyPreferredCategory:        {kind: kindString, def: question.All},
	KeyAutoDeleteScope:          {kind: kindString, def: question.All},
	KeyAutoDeleteScheduled:      {kind: kindBool, def: "false"},
	KeyAutoDeleteHour:           {kind: kindInt, def: "0", min: 0, max: 23},
	KeyAutoDeleteMinute:         {kind: kindInt, def: "0", min: 0, max: 59},
	KeySelectedTopics:           {kind: kindTopics, def: strings.Join(question.Categories, ",")},
	KeyDatasetImported:          {kind: kindBool, def: "false"},
}

// Keys returns every known preference name in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(definitions))
	for key := range definitions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Preferences exposes typed accessors with defaults over a Store.
type Preferences struct {
	store Store
}

func New(store Store) *Preferences {
	return &Preferences{store: store}
}

// Lookup returns the raw value of a preference, or its default when unset.
func (p *Preferences) Lookup(ctx context.Context, key string) (string, error) {
	def, ok := definitions[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrUnknownKey)
	}
	return getString(ctx, p.store, key, def.def)
}

// Update validates value against the preference type and stores it.
func (p *Preferences) Update(ctx context.Context, key, value string) error {
	def, ok := definitions[key]
	if !ok {
		return fmt.Errorf("%s: %w", key, ErrUnknownKey)
	}
	switch def.kind {
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, value, ErrInvalidValue)
		}
		value = strconv.FormatBool(b)
	case kindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < def.min || n > def.max {
			return fmt.Errorf("%s=%q must be between %d and %d: %w", key, value, def.min, def.max, ErrInvalidValue)
		}
	case kindTopics:
		topics, err := canonicalTopics(value)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, value, err)
		}
		value = strings.Join(topics, ",")
	}
	return p.store.Set(ctx, key, value)
}

// canonicalTopics maps each comma separated entry to its spelling in question.Categories.
func canonicalTopics(value string) ([]string, error) {
	var topics []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		idx := slices.IndexFunc(question.Categories, func(c string) bool { return strings.EqualFold(c, entry) })
		if idx < 0 {
			return nil, fmt.Errorf("unknown topic %q: %w", entry, ErrInvalidValue)
		}
		if !slices.Contains(topics, question.Categories[idx]) {
			topics = append(topics, question.Categories[idx])
		}
	}
	return topics, nil
}

func (p *Preferences) boolValue(ctx context.Context, key string) (bool, error) {
	def, _ := strconv.ParseBool(definitions[key].def)
	return getBool(ctx, p.store, key, def)
}

func (p *Preferences) intValue(ctx context.Context, key string) (int64, error) {
	def, _ := strconv.ParseInt(definitions[key].def, 10, 64)
	return getInt64(ctx, p.store, key, def)
}

func (p *Preferences) stringValue(ctx context.Context, key string) (string, error) {
	return getString(ctx, p.store, key, definitions[key].def)
}

func (p *Preferences) setBool(ctx context.Context, key string, value bool) error {
	return p.store.Set(ctx, key, strconv.FormatBool(value))
}

func (p *Preferences) clockTime(ctx context.Context, hourKey, minuteKey string) (int, int, error) {
	hour, err := p.intValue(ctx, hourKey)
	if err != nil {
		return 0, 0, err
	}
	minute, err := p.intValue(ctx, minuteKey)
	if err != nil {
		return 0, 0, err
	}
	return int(hour), int(minute), nil
}

func (p *Preferences) setClockTime(ctx context.Context, hourKey, minuteKey string, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%02d:%02d: %w", hour, minute, ErrInvalidValue)
	}
	if err := p.store.Set(ctx, hourKey, strconv.Itoa(hour)); err != nil {
		return err
	}
	return p.store.Set(ctx, minuteKey, strconv.Itoa(minute))
}

func (p *Preferences) DailyNotificationEnabled(ctx context.Context) (bool, error) {
	return p.boolValue(ctx, KeyDailyNotificationEnabled)
}

func (p *Preferences) SetDailyNotificationEnabled(ctx context.Context, enabled bool) error {
	return p.setBool(ctx, KeyDailyNotificationEnabled, enabled)
}

// NotificationTime returns the daily reminder time of day.
func (p *Preferences) NotificationTime(ctx context.Context) (hour, minute int, err error) {
	return p.clockTime(ctx, KeyNotificationHour, KeyNotificationMinute)
}

func (p *Preferences) SetNotificationTime(ctx context.Context, hour, minute int) error {
	return p.setClockTime(ctx, KeyNotificationHour, KeyNotificationMinute, hour, minute)
}

// WeekendModeEnabled reports whether reminders are skipped on Saturday and Sunday.
func (p *Preferences) WeekendModeEnabled(ctx context.Context) (bool, error) {
	return p.boolValue(ctx, KeyWeekendModeEnabled)
}

func (p *Preferences) SetWeekendModeEnabled(ctx context.Context, enabled bool) error {
	return p.setBool(ctx, KeyWeekendModeEnabled, enabled)
}

// LastExternalGeneration returns when a question was last generated externally. Zero means never.
func (p *Preferences) LastExternalGeneration(ctx context.Context) (time.Time, error) {
	ms, err := p.intValue(ctx, KeyLastExternalGeneration)
	if err != nil || ms == 0 {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func (p *Preferences) SetLastExternalGeneration(ctx context.Context, at time.Time) error {
	return p.store.Set(ctx, KeyLastExternalGeneration, strconv.FormatInt(at.UnixMilli(), 10))
}

func (p *Preferences) PreferredDifficulty(ctx context.Context) (string, error) {
	return p.stringValue(ctx, KeyPreferredDifficulty)
}

func (p *Preferences) SetPreferredDifficulty(ctx context.Context, difficulty string) error {
	return p.store.Set(ctx, KeyPreferredDifficulty, difficulty)
}

func (p *Preferences) PreferredCategory(ctx context.Context) (string, error) {
	return p.stringValue(ctx, KeyPreferredCategory)
}

func (p *Preferences) SetPreferredCategory(ctx context.Context, category string) error {
	return p.store.Set(ctx, KeyPreferredCategory, category)
}

// AutoDeleteScope returns the scope token used by the scheduled deletion.
func (p *Preferences) AutoDeleteScope(ctx context.Context) (string, error) {
	return p.stringValue(ctx, KeyAutoDeleteScope)
}

func (p *Preferences) SetAutoDeleteScope(ctx context.Context, scope string) error {
	return p.store.Set(ctx, KeyAutoDeleteScope, scope)
}

func (p *Preferences) AutoDeleteScheduled(ctx context.Context) (bool, error) {
	return p.boolValue(ctx, KeyAutoDeleteScheduled)
}

func (p *Preferences) SetAutoDeleteScheduled(ctx context.Context, scheduled bool) error {
	return p.setBool(ctx, KeyAutoDeleteScheduled, scheduled)
}

func (p *Preferences) AutoDeleteTime(ctx context.Context) (hour, minute int, err error) {
	return p.clockTime(ctx, KeyAutoDeleteHour, KeyAutoDeleteMinute)
}

func (p *Preferences) SetAutoDeleteTime(ctx context.Context, hour, minute int) error {
	return p.setClockTime(ctx, KeyAutoDeleteHour, KeyAutoDeleteMinute, hour, minute)
}

// SelectedTopics returns the categories generation may pick from. An empty selection falls back to every category.
func (p *Preferences) SelectedTopics(ctx context.Context) ([]string, error) {
	raw, err := p.stringValue(ctx, KeySelectedTopics)
	if err != nil {
		return question.Categories, err
	}
	var topics []string
	for _, topic := range strings.Split(raw, ",") {
		if topic = strings.TrimSpace(topic); topic != "" {
			topics = append(topics, topic)
		}
	}
	if len(topics) == 0 {
		return question.Categories, nil
	}
	return topics, nil
}

func (p *Preferences) SetSelectedTopics(ctx context.Context, topics []string) error {
	return p.store.Set(ctx, KeySelectedTopics, strings.Join(topics, ","))
}

// DatasetImported reports whether the bundled dataset has already been imported.
func (p *Preferences) DatasetImported(ctx context.Context) (bool, error) {
	return p.boolValue(ctx, KeyDatasetImported)
}

func (p *Preferences) SetDatasetImported(ctx context.Context, imported bool) error {
	return p.setBool(ctx, KeyDatasetImported, imported)
}
