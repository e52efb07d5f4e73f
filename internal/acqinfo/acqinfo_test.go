package acqinfo_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openphysio/physiolog/internal/acqinfo"
	"github.com/openphysio/physiolog/internal/apperr"
	"github.com/openphysio/physiolog/internal/models"
	"github.com/openphysio/physiolog/internal/testutil"
)

const uuid = "007e910e-02d9-4d7a-8fdb-8e3568be8322"

func infoBuf(data []byte) models.LogBuffer {
	return models.LogBuffer{Kind: models.KindInfo, Name: "Physio_test_Info.log", Data: data}
}

func TestParse_NormalizedMap(t *testing.T) {
	data := testutil.InfoLog(uuid, 2, 2, 1, 1000, 1400,
		"0 0 1000 1090",
		"0 1 1100 1190",
		"1 0 1200 1290",
		"1 1 1300 1390",
	)
	res, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)

	assert.Equal(t, uuid, res.Meta.UUID)
	assert.Equal(t, 2, res.Meta.Slices)
	assert.Equal(t, 2, res.Meta.Volumes)
	assert.Equal(t, 1, res.Meta.Echoes)
	assert.Equal(t, 1000, res.Meta.FirstTime)
	assert.Equal(t, 1400, res.Meta.LastTime)

	// Every written cell is zero-based and within the scan, finish >= start.
	span := res.Meta.LastTime - res.Meta.FirstTime
	cells := 0
	res.Map.EachWritten(func(_, _, _, start, finish int) {
		cells++
		assert.GreaterOrEqual(t, start, 0)
		assert.LessOrEqual(t, finish, span)
		assert.GreaterOrEqual(t, finish, start)
	})
	assert.Equal(t, 4, cells)

	start, finish, ok := res.Map.Cell(1, 1, 0)
	require.True(t, ok)
	assert.Equal(t, 300, start)
	assert.Equal(t, 390, finish)
}

func TestParse_Idempotent(t *testing.T) {
	data := testutil.InfoLog(uuid, 2, 3, 2, 500, 900,
		"0 0 500 510 0",
		"0 0 520 530 1",
		"1 1 600 610 0",
	)
	first, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)
	second, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)

	assert.Equal(t, first.Meta, second.Meta)
	assert.True(t, reflect.DeepEqual(first.Map, second.Map))
}

func TestParse_DefaultEchoes(t *testing.T) {
	data := testutil.InfoLog(uuid, 2, 2, 0, 100, 300, "0 0 100 150")
	res, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Meta.Echoes)
}

func TestParse_LegacyVolumeCorrection(t *testing.T) {
	// NumVolumes = 1 with 4 slices, 1 echo and a 15-line file (11 header
	// lines + 4 data rows) must correct to exactly 1 volume.
	data := testutil.InfoLog(uuid, 4, 1, 1, 100, 500,
		"0 0 100 120",
		"0 1 130 150",
		"0 2 160 180",
		"0 3 190 210",
	)
	res, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Meta.Volumes)
}

func TestParse_LegacyCorrectionRecoversVolumes(t *testing.T) {
	// A mis-reported NumVolumes = 1 over two actual volumes.
	data := testutil.InfoLog(uuid, 2, 1, 1, 100, 500,
		"0 0 100 120",
		"0 1 130 150",
		"1 0 200 220",
		"1 1 230 250",
	)
	res, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Meta.Volumes)

	_, _, ok := res.Map.Cell(1, 1, 0)
	assert.True(t, ok)
}

func TestParse_DuplicateExplicitEchoDistinct(t *testing.T) {
	data := testutil.InfoLog(uuid, 1, 2, 2, 100, 400,
		"0 0 100 110 0",
		"0 0 120 130 1",
	)
	res, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)

	_, _, ok := res.Map.Cell(0, 0, 0)
	assert.True(t, ok)
	_, _, ok = res.Map.Cell(0, 0, 1)
	assert.True(t, ok)
}

func TestParse_DuplicateExplicitEchoSameCell(t *testing.T) {
	data := testutil.InfoLog(uuid, 1, 2, 2, 100, 400,
		"0 0 100 110 1",
		"0 0 120 130 1",
	)
	_, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrDuplicateTiming)
}

func TestParse_DuplicateDefaultedEchoLastWins(t *testing.T) {
	data := testutil.InfoLog(uuid, 1, 2, 1, 100, 400,
		"0 0 100 110",
		"0 0 120 130",
		"1 0 140 150",
	)
	res, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.NoError(t, err)

	start, finish, ok := res.Map.Cell(0, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 20, start)
	assert.Equal(t, 30, finish)
}

func TestParse_VersionMismatch(t *testing.T) {
	data := []byte("UUID = x\nLogVersion = EJA_2\nLogDataType = ACQUISITION_INFO\n")
	_, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrFormatVersion)
}

func TestParse_WrongDataType(t *testing.T) {
	data := testutil.ChannelLog(uuid, "ECG", 1)
	_, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrDataType)
}

func TestParse_SampleTimeInvalidInInfo(t *testing.T) {
	data := []byte("UUID = x\nLogVersion = EJA_1\nLogDataType = ACQUISITION_INFO\nSampleTime = 2\n")
	_, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrDataType)
}

func TestParse_MissingRequiredField(t *testing.T) {
	data := []byte("UUID = x\nLogVersion = EJA_1\nLogDataType = ACQUISITION_INFO\nNumSlices = 2\n")
	_, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrMissingField)
}

func TestParse_TimelineInvariant(t *testing.T) {
	data := testutil.InfoLog(uuid, 2, 2, 1, 500, 500, "0 0 500 510")
	_, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrTimeline)
}

func TestParse_RowOutOfRange(t *testing.T) {
	data := testutil.InfoLog(uuid, 1, 2, 1, 100, 400, "0 5 100 110")
	_, err := acqinfo.Parse(infoBuf(data), testutil.Logger())
	require.Error(t, err)
}
