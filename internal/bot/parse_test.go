package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeboard/internal/model"
	"homeboard/internal/service"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Periodicity
		wantErr bool
	}{
		{in: "", want: model.Periodicity{}},
		{in: "7", want: model.Periodicity{Value: 7, Unit: model.UnitDays}},
		{in: "14 jours", want: model.Periodicity{Value: 14, Unit: model.UnitDays}},
		{in: "2j", want: model.Periodicity{Value: 2, Unit: model.UnitDays}},
		{in: "36h", want: model.Periodicity{Value: 36, Unit: model.UnitHours}},
		{in: "1,5 heures", want: model.Periodicity{Value: 1.5, Unit: model.UnitHours}},
		{in: "0", wantErr: true},
		{in: "souvent", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePeriod(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChoreArgs(t *testing.T) {
	got, err := parseChoreArgs(" Aspirateur | 7 | Salon ")
	require.NoError(t, err)
	assert.Equal(t, service.ChoreInput{Title: "Aspirateur", Every: model.Periodicity{Value: 7, Unit: model.UnitDays}, Room: "Salon"}, got)

	got, err = parseChoreArgs("Plantes")
	require.NoError(t, err)
	assert.Equal(t, "Plantes", got.Title)
	assert.True(t, got.Every.IsZero())

	_, err = parseChoreArgs("  | 3")
	assert.ErrorIs(t, err, errUsage)
}

func TestParseCourseArgs(t *testing.T) {
	got, err := parseCourseArgs("Lait | 2L | Épicerie | demi-écrémé")
	require.NoError(t, err)
	assert.Equal(t, service.CourseInput{Title: "Lait", Quantity: "2L", Category: "Épicerie", Note: "demi-écrémé"}, got)

	_, err = parseCourseArgs("")
	assert.ErrorIs(t, err, errUsage)
}

func TestParseMealArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    mealArgs
		wantErr bool
	}{
		{in: "jeudi soir Gratin", want: mealArgs{Day: "jeudi", Moment: "soir", Text: "Gratin"}},
		{in: "lundi midi 1 Pâtes au pesto", want: mealArgs{Day: "lundi", Moment: "midi", WeekOffset: 1, Text: "Pâtes au pesto"}},
		{in: "lundi midi +1 Soupe", want: mealArgs{Day: "lundi", Moment: "midi", WeekOffset: 1, Text: "Soupe"}},
		{in: "lundi midi 4", want: mealArgs{Day: "lundi", Moment: "midi", Text: "4"}},
		{in: "lundi midi", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMealArgs(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallback(t *testing.T) {
	kind, action, id, ok := parseCallback(callbackData(kindTask, actionReset, 12))
	require.True(t, ok)
	assert.Equal(t, kindTask, kind)
	assert.Equal(t, actionReset, action)
	assert.EqualValues(t, 12, id)

	for _, bad := range []string{"", "t:toggle", "t:toggle:x", "t:toggle:0"} {
		_, _, _, ok := parseCallback(bad)
		assert.False(t, ok, bad)
	}
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Court", shortTitle("  Court ", 10))
	assert.Equal(t, "Nettoyer l…", shortTitle("Nettoyer le frigo", 11))
}
