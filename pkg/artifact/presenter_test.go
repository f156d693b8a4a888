package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const networkHTML = `<!DOCTYPE html>
<html><head><title>
  Twitter   network
</title></head><body><div id="plot"></div></body></html>`

func platformFixture() map[string]string {
	return map[string]string{
		"platforms/twitter/network_plot.html":        networkHTML,
		"platforms/twitter/clusters/cluster_a.html":  "<html><title>A</title></html>",
		"platforms/twitter/clusters/cluster_b.html":  "<html></html>",
		"platforms/twitter/clusters/wordcloud_a.png": "\x89PNG\r\n\x1a\n",
	}
}

func TestResolve_Platform(t *testing.T) {
	store, root := setupStore(t, platformFixture())
	layout := DefaultLayout(root)

	record, err := store.Resolve(PagePlatforms, Selection{DimPlatform: "twitter"}, ResolveOptions{})
	require.NoError(t, err)

	want := &Record{
		Page:      PagePlatforms,
		Selection: Selection{DimPlatform: "twitter"},
		Artifacts: []*Artifact{
			{Kind: KindNetwork, Path: filepath.Join(layout.PlatformDir("twitter"), PlatformNetworkFile), MediaType: MediaTypeHTML, Exists: true},
			{Kind: KindDensity, Path: filepath.Join(layout.PlatformDir("twitter"), PlatformDensityFile), MediaType: MediaTypeHTML, Exists: false},
			{Kind: KindClusterList, Path: layout.ClustersDir("twitter"), MediaType: MediaTypeDirectory, Exists: true},
		},
		Clusters: []string{"a", "b"},
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Cluster(t *testing.T) {
	store, _ := setupStore(t, platformFixture())

	record, err := store.Resolve(PagePlatforms, Selection{DimPlatform: "twitter", DimCluster: "b"}, ResolveOptions{LoadContent: true})
	require.NoError(t, err)

	view, ok := record.Artifact(KindClusterView)
	require.True(t, ok)
	assert.True(t, view.Available())
	assert.Equal(t, "<html></html>", string(view.Content))

	cloud, ok := record.Artifact(KindWordcloud)
	require.True(t, ok)
	assert.False(t, cloud.Exists)
	assert.Nil(t, cloud.Content)

	network, _ := record.Artifact(KindNetwork)
	assert.Equal(t, "Twitter network", network.Title)

	list, _ := record.Artifact(KindClusterList)
	assert.Nil(t, list.Content)
}

func TestResolve_Errors(t *testing.T) {
	store, _ := setupStore(t, platformFixture())

	testCases := []struct {
		name   string
		page   PageName
		sel    Selection
		errMsg string
	}{
		{name: "no selection", page: PagePlatforms, sel: nil, errMsg: "missing: platform"},
		{name: "users needs both dimensions", page: PageUsers, sel: Selection{DimCategory: "partidos"}, errMsg: "missing: user"},
		{name: "path traversal", page: PagePlatforms, sel: Selection{DimPlatform: ".."}, errMsg: "hidden"},
		{name: "separator", page: PageMetrics, sel: Selection{DimCategory: "a/b"}, errMsg: "path separators"},
		{name: "unknown page", page: "reports", sel: Selection{DimCategory: "x"}, errMsg: "unknown page"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := store.Resolve(tc.page, tc.sel, ResolveOptions{})
			assert.Nil(t, record)
			require.Error(t, err)
			assert.True(t, IsInvalidSelection(err))
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestResolve_MissingIsNotAnError(t *testing.T) {
	store, _ := setupStore(t, map[string]string{
		"individual/partidos/ana/network.html": "<html></html>",
	})

	record, err := store.Resolve(PageUsers, Selection{DimCategory: "partidos", DimUser: "ana"}, ResolveOptions{LoadContent: true})
	require.NoError(t, err)

	network, _ := record.Artifact(KindNetwork)
	density, _ := record.Artifact(KindDensity)
	assert.True(t, network.Available())
	assert.False(t, density.Exists)
	assert.Nil(t, density.Err)

	t.Run("user outside the options is rejected", func(t *testing.T) {
		record, err := store.Resolve(PageUsers, Selection{DimCategory: "partidos", DimUser: "nadie"}, ResolveOptions{})
		assert.Nil(t, record)
		assert.True(t, IsInvalidSelection(err))
	})
}

func TestResolve_ExistenceIsFresh(t *testing.T) {
	store, root := setupStore(t, map[string]string{
		"individual/partidos/ana/network.html": "<html></html>",
		"individual/partidos/ana/density.html": "<html></html>",
	})
	sel := Selection{DimCategory: "partidos", DimUser: "ana"}
	density := filepath.Join(root, "individual", "partidos", "ana", "density.html")

	exists := func(kind Kind) bool {
		t.Helper()
		record, err := store.Resolve(PageUsers, sel, ResolveOptions{})
		require.NoError(t, err)
		a, ok := record.Artifact(kind)
		require.True(t, ok)
		return a.Exists
	}

	assert.True(t, exists(KindDensity))

	require.NoError(t, os.Remove(density))
	assert.False(t, exists(KindDensity))
	assert.True(t, exists(KindNetwork))

	require.NoError(t, os.WriteFile(density, []byte("<html></html>"), 0644))
	assert.True(t, exists(KindDensity))
}

func TestResolve_RejectsValuesNotOffered(t *testing.T) {
	store, _ := setupStore(t, map[string]string{
		"polarization/medios.html":             "<html></html>",
		"polarization/solo.html":               "<html></html>",
		"cohesion/medios.html":                 "<html></html>",
		"individual/medios/luis/network.html":  "<html></html>",
		"individual/partidos/ana/network.html": "<html></html>",
	})

	testCases := []struct {
		name string
		page PageName
		sel  Selection
	}{
		{name: "category without cohesion chart", page: PageMetrics, sel: Selection{DimCategory: "solo"}},
		{name: "user of another category", page: PageUsers, sel: Selection{DimCategory: "medios", DimUser: "ana"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := store.Resolve(tc.page, tc.sel, ResolveOptions{})
			assert.Nil(t, record)
			require.Error(t, err)
			assert.True(t, IsInvalidSelection(err))
			assert.Contains(t, err.Error(), "not among the available options")
		})
	}

	t.Run("missing root", func(t *testing.T) {
		_, err := store.Resolve(PagePlatforms, Selection{DimPlatform: "twitter"}, ResolveOptions{})
		assert.True(t, IsNotFound(err))
	})
}

func TestResolve_LoadErrorIsolated(t *testing.T) {
	store, _ := setupStore(t, map[string]string{
		"polarization/medios.html": "<html>\xff\xfe</html>",
		"cohesion/medios.html":     "<html><title>Cohesion</title></html>",
	})

	record, err := store.Resolve(PageMetrics, Selection{DimCategory: "medios"}, ResolveOptions{LoadContent: true})
	require.NoError(t, err)

	polarization, _ := record.Artifact(KindPolarization)
	require.NotNil(t, polarization.Err)
	assert.ErrorIs(t, polarization.Err, errInvalidEncoding)
	assert.True(t, polarization.Exists)
	assert.False(t, polarization.Available())
	assert.Nil(t, polarization.Content)

	cohesion, _ := record.Artifact(KindCohesion)
	assert.True(t, cohesion.Available())
	assert.Equal(t, "Cohesion", cohesion.Title)

	t.Run("Load surfaces the error", func(t *testing.T) {
		a, err := store.Load(PageMetrics, Selection{DimCategory: "medios"}, KindPolarization)
		require.Error(t, err)
		assert.True(t, IsLoadError(err))
		assert.NotNil(t, a)
	})
}

func TestLoad(t *testing.T) {
	store, _ := setupStore(t, platformFixture())
	sel := Selection{DimPlatform: "twitter", DimCluster: "a"}

	a, err := store.Load(PagePlatforms, sel, KindWordcloud)
	require.NoError(t, err)
	assert.Equal(t, MediaTypePNG, a.MediaType)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), a.Content)
	assert.Empty(t, a.Title)

	a, err = store.Load(PagePlatforms, sel, KindDensity)
	require.NoError(t, err)
	assert.False(t, a.Exists)

	_, err = store.Load(PagePlatforms, Selection{DimPlatform: "twitter"}, KindWordcloud)
	assert.True(t, IsInvalidSelection(err))
}

func TestArtifact_MarshalJSON(t *testing.T) {
	a := &Artifact{
		Kind:      KindPolarization,
		Path:      "/data/polarization/medios.html",
		MediaType: MediaTypeHTML,
		Exists:    true,
		Content:   []byte("<html></html>"),
		Err:       &LoadError{Kind: KindPolarization, Path: "/data/polarization/medios.html", Err: errInvalidEncoding},
	}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	want := map[string]any{
		"kind":       "polarization",
		"path":       "/data/polarization/medios.html",
		"media_type": MediaTypeHTML,
		"exists":     true,
		"available":  false,
		"error":      a.Err.Error(),
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("MarshalJSON() mismatch (-want +got):\n%s", diff)
	}
}
