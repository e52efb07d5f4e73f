package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openphysio/physiolog/internal/apperr"
	"github.com/openphysio/physiolog/internal/models"
	"github.com/openphysio/physiolog/internal/source"
	"github.com/openphysio/physiolog/internal/testutil"
)

const uuid = "test-uuid"

func TestLocate_Siblings(t *testing.T) {
	info := testutil.InfoLog(uuid, 1, 2, 1, 100, 200, "0 0 100 110")
	puls := testutil.ChannelLog(uuid, "PULS", 2, "100 PULS 7")
	fsys := testutil.FakeFS{
		"scan/Physio_20200428_142451_Info.log": info,
		"scan/Physio_20200428_142451_PULS.log": puls,
	}

	src, err := source.Locate("scan/Physio_20200428_142451", fsys, nil, testutil.Logger())
	require.NoError(t, err)

	assert.Equal(t, models.KindInfo, src.Info.Kind)
	assert.Equal(t, info, src.Info.Data)
	require.Len(t, src.Channels, 1)
	assert.Equal(t, models.KindPULS, src.Channels[0].Kind)
	assert.Equal(t, puls, src.Channels[0].Data)
}

func TestLocate_SiblingsAllChannels(t *testing.T) {
	fsys := testutil.FakeFS{
		"base_Info.log": testutil.InfoLog(uuid, 1, 2, 1, 100, 200),
		"base_ECG.log":  testutil.ChannelLog(uuid, "ECG", 2),
		"base_RESP.log": testutil.ChannelLog(uuid, "RESP", 2),
		"base_PULS.log": testutil.ChannelLog(uuid, "PULS", 2),
		"base_EXT.log":  testutil.ChannelLog(uuid, "EXT", 2),
	}
	src, err := source.Locate("base", fsys, nil, testutil.Logger())
	require.NoError(t, err)
	require.Len(t, src.Channels, 4)
	kinds := []models.LogKind{src.Channels[0].Kind, src.Channels[1].Kind, src.Channels[2].Kind, src.Channels[3].Kind}
	assert.Equal(t, models.ChannelKinds, kinds)
}

func TestLocate_InfoMissing(t *testing.T) {
	fsys := testutil.FakeFS{
		"base_PULS.log": testutil.ChannelLog(uuid, "PULS", 2),
	}
	_, err := source.Locate("base", fsys, nil, testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrSourceNotFound)
}

func TestLocate_NoChannels(t *testing.T) {
	fsys := testutil.FakeFS{
		"base_Info.log": testutil.InfoLog(uuid, 1, 2, 1, 100, 200),
	}
	_, err := source.Locate("base", fsys, nil, testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrSourceNotFound)
}

func TestLocate_Container(t *testing.T) {
	info := testutil.InfoLog(uuid, 1, 2, 1, 100, 200, "0 0 100 110")
	resp := testutil.ChannelLog(uuid, "RESP", 2, "100 RESP 3")
	container := testutil.PhysioContainer(
		testutil.EmbeddedFile{Name: "Physio_x_Info.log", Data: info},
		testutil.EmbeddedFile{Name: "Physio_x_RESP.log", Data: resp},
	)
	fsys := testutil.FakeFS{"scan.dcm": []byte("dicom")}

	src, err := source.Locate("scan.dcm", fsys, container, testutil.Logger())
	require.NoError(t, err)

	assert.Equal(t, info, src.Info.Data)
	require.Len(t, src.Channels, 1)
	assert.Equal(t, models.KindRESP, src.Channels[0].Kind)
	assert.Equal(t, resp, src.Channels[0].Data)
}

func TestLocate_ContainerIgnoresUnknownFiles(t *testing.T) {
	container := testutil.PhysioContainer(
		testutil.EmbeddedFile{Name: "Physio_x_Info.log", Data: testutil.InfoLog(uuid, 1, 2, 1, 100, 200)},
		testutil.EmbeddedFile{Name: "Physio_x_Extra.bin", Data: []byte{1, 2, 3}},
		testutil.EmbeddedFile{Name: "Physio_x_PULS.log", Data: testutil.ChannelLog(uuid, "PULS", 2)},
	)
	fsys := testutil.FakeFS{"scan.dcm": []byte("dicom")}

	src, err := source.Locate("scan.dcm", fsys, container, testutil.Logger())
	require.NoError(t, err)
	require.Len(t, src.Channels, 1)
	assert.Equal(t, models.KindPULS, src.Channels[0].Kind)
}

func TestLocate_ContainerBadImageType(t *testing.T) {
	container := testutil.PhysioContainer(
		testutil.EmbeddedFile{Name: "x_Info.log", Data: testutil.InfoLog(uuid, 1, 2, 1, 100, 200)},
		testutil.EmbeddedFile{Name: "x_PULS.log", Data: testutil.ChannelLog(uuid, "PULS", 2)},
	)
	container.Type = []string{"ORIGINAL", "PRIMARY"}
	fsys := testutil.FakeFS{"scan.dcm": []byte("dicom")}

	_, err := source.Locate("scan.dcm", fsys, container, testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrMalformedContainer)
}

func TestLocate_ContainerBadCreator(t *testing.T) {
	container := testutil.PhysioContainer(
		testutil.EmbeddedFile{Name: "x_Info.log", Data: testutil.InfoLog(uuid, 1, 2, 1, 100, 200)},
		testutil.EmbeddedFile{Name: "x_PULS.log", Data: testutil.ChannelLog(uuid, "PULS", 2)},
	)
	container.Creator = "SOMEONE ELSE"
	fsys := testutil.FakeFS{"scan.dcm": []byte("dicom")}

	_, err := source.Locate("scan.dcm", fsys, container, testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrMalformedContainer)
}

func TestLocate_ContainerBadGeometry(t *testing.T) {
	container := testutil.PhysioContainer(
		testutil.EmbeddedFile{Name: "x_Info.log", Data: testutil.InfoLog(uuid, 1, 2, 1, 100, 200)},
		testutil.EmbeddedFile{Name: "x_PULS.log", Data: testutil.ChannelLog(uuid, "PULS", 2)},
	)
	// Payload length is no longer divisible into rows*1024 chunks.
	container.Payload = container.Payload[:len(container.Payload)-100]
	fsys := testutil.FakeFS{"scan.dcm": []byte("dicom")}

	_, err := source.Locate("scan.dcm", fsys, container, testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrMalformedContainer)
}

func TestLocate_ContainerWithoutInfo(t *testing.T) {
	container := testutil.PhysioContainer(
		testutil.EmbeddedFile{Name: "x_PULS.log", Data: testutil.ChannelLog(uuid, "PULS", 2)},
	)
	fsys := testutil.FakeFS{"scan.dcm": []byte("dicom")}

	_, err := source.Locate("scan.dcm", fsys, container, testutil.Logger())
	require.ErrorIs(t, err, apperr.ErrSourceNotFound)
}

func TestLocate_NonSiemensManufacturerWarnsOnly(t *testing.T) {
	container := testutil.PhysioContainer(
		testutil.EmbeddedFile{Name: "x_Info.log", Data: testutil.InfoLog(uuid, 1, 2, 1, 100, 200)},
		testutil.EmbeddedFile{Name: "x_PULS.log", Data: testutil.ChannelLog(uuid, "PULS", 2)},
	)
	container.Manu = "ACME"
	fsys := testutil.FakeFS{"scan.dcm": []byte("dicom")}

	_, err := source.Locate("scan.dcm", fsys, container, testutil.Logger())
	require.NoError(t, err)
}
