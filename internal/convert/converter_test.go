package convert

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"prov-converter/internal/mapping"
	"prov-converter/internal/provgraph"
)

func decode(t *testing.T, doc string) *provgraph.Graph {
	t.Helper()

	g, err := provgraph.Decode(strings.NewReader(doc))
	require.NoError(t, err)

	return g
}

func convert(t *testing.T, doc string, opts Options) *Result {
	t.Helper()

	res, err := New(nil, opts).Convert(decode(t, doc))
	require.NoError(t, err)

	return res
}

func instance(t *testing.T, g *provgraph.Graph, class, id string) provgraph.Instance {
	t.Helper()

	b, ok := g.Bucket(class)
	require.True(t, ok, "class %s missing from output: %s", class, spew.Sdump(g.Classes()))

	inst, ok := b.Get(id)
	require.True(t, ok, "%s %s missing from output: %s", class, id, spew.Sdump(b.IDs()))

	return inst
}

func TestConvertRenamesAgentAttributes(t *testing.T) {
	res := convert(t, `{"agent": {"a1": {"voprov:id": "a1", "voprov:name": "Alice"}}}`, Options{})

	assert.Equal(t, []string{"agent"}, res.Graph.Classes())
	assert.Equal(t, provgraph.Instance{"prov:id": "a1", "prov:label": "Alice"}, instance(t, res.Graph, "agent", "a1"))
	assert.True(t, res.Diagnostics.IsValid())
	assert.Empty(t, res.Diagnostics.Warnings)
}

func TestConvertMergesParameterAndSynthesizesUsed(t *testing.T) {
	doc := `{
		"activity": {"act1": {"voprov:id": "act1"}},
		"parameter": {
			"p1": {
				"voprov:id": "p1",
				"voprov:value": "5",
				"voprov:activity": "act1",
				"voprov:description": "d1"
			}
		},
		"parameterDescription": {
			"d1": {"voprov:id": "d1", "voprov:name": "lambda", "voprov:unit": "Angstrom"}
		}
	}`

	res := convert(t, doc, Options{})

	assert.Equal(t, []string{"activity", "entity", "used"}, res.Graph.Classes())

	assert.Equal(t, provgraph.Instance{
		"prov:id":            "p1",
		"prov:value":         "5",
		"prov:label":         "lambda",
		"voprov:unit":        "Angstrom",
		"voprov:activity":    "act1",
		"voprov:description": "d1",
		"voprov:votype":      "voprov:parameter",
	}, instance(t, res.Graph, "entity", "p1"))

	used, _ := res.Graph.Bucket("used")
	require.Equal(t, []string{"_:p0"}, used.IDs())
	assert.Equal(t, provgraph.Instance{
		"prov:activity": "act1",
		"prov:entity":   "p1",
		"prov:role":     "voprov:parameter",
	}, instance(t, res.Graph, "used", "_:p0"))

	omitted := res.Diagnostics.ByCode(CodeDescriptionOmitted)
	require.Len(t, omitted, 1)
	assert.Equal(t, "parameterDescription", omitted[0].Class)

	assert.Equal(t, 1, res.Stats.MergedInstances)
	assert.Equal(t, 1, res.Stats.SynthesizedRelations)
	assert.Equal(t, 1, res.Stats.OmittedClasses)
}

func TestConvertCopiesUnmappedClass(t *testing.T) {
	res := convert(t, `{"foo": {"x": {"bar": 1, "voprov:name": "kept"}}}`, Options{})

	inst := instance(t, res.Graph, "foo", "x")
	assert.Equal(t, provgraph.Instance{"bar": json.Number("1"), "voprov:name": "kept"}, inst)

	unmapped := res.Diagnostics.ByCode(CodeUnmappedClass)
	require.Len(t, unmapped, 1)
	assert.Equal(t, "foo", unmapped[0].Class)
	assert.Contains(t, unmapped[0].Message, "foo")
	assert.Equal(t, 1, res.Stats.UnmappedClasses)
}

func TestConvertSuggestsNearbyClassNames(t *testing.T) {
	res := convert(t, `{"activityflow": {"f1": {}}}`, Options{})

	unmapped := res.Diagnostics.ByCode(CodeUnmappedClass)
	require.Len(t, unmapped, 1)
	assert.Contains(t, unmapped[0].Suggestions, "activityFlow")
}

func TestConvertAnnotatesCollectionAndActivityFlow(t *testing.T) {
	doc := `{
		"collection": {"c1": {"voprov:id": "c1"}},
		"activityFlow": {"f1": {"voprov:id": "f1", "voprov:name": "pipeline"}},
		"hadStep": {"_:h1": {"voprov:activityFlow": "f1", "voprov:activity": "a1"}}
	}`

	res := convert(t, doc, Options{})

	assert.Equal(t, provgraph.Instance{"prov:id": "c1", "prov:type": "prov:collection"},
		instance(t, res.Graph, "entity", "c1"))
	assert.Equal(t, provgraph.Instance{"prov:id": "f1", "prov:label": "pipeline", "voprov:votype": "voprov:activityFlow"},
		instance(t, res.Graph, "activity", "f1"))
	assert.Equal(t, provgraph.Instance{
		"prov:influencee": "f1",
		"prov:influencer": "a1",
		"voprov:votype":   "voprov:hadStep",
	}, instance(t, res.Graph, "wasInfluencedBy", "_:h1"))
}

func TestConvertNumbersRelationsInDocumentOrder(t *testing.T) {
	doc := `{
		"parameter": {
			"pz": {"voprov:activity": "a", "voprov:description": "d"},
			"pa": {"voprov:activity": "a", "voprov:description": "d"},
			"pm": {"voprov:activity": "a", "voprov:description": "d"}
		},
		"parameterDescription": {"d": {"voprov:id": "d"}}
	}`

	res := convert(t, doc, Options{})

	used, ok := res.Graph.Bucket("used")
	require.True(t, ok)
	require.Equal(t, []string{"_:p0", "_:p1", "_:p2"}, used.IDs())

	for i, id := range []string{"pz", "pa", "pm"} {
		rel := instance(t, res.Graph, "used", used.IDs()[i])
		assert.Equal(t, id, rel["prov:entity"])
	}

	assert.Equal(t, 3, res.Stats.SynthesizedRelations)
	assert.Equal(t, 3, res.Stats.MergedInstances)
}

func TestConvertCountsInstances(t *testing.T) {
	g, err := provgraph.LoadFile("../provgraph/testdata/voprov.json")
	require.NoError(t, err)

	res, err := New(nil, Options{}).Convert(g)
	require.NoError(t, err)

	// activity, entity, used, parameter, parameterDescription.
	assert.Equal(t, 5, res.Stats.SourceClasses)
	assert.Equal(t, 5, res.Stats.SourceInstances)

	// parameterDescription is dropped, one used relation is added.
	assert.Equal(t, 3, res.Stats.OutputClasses)
	assert.Equal(t, 5, res.Stats.OutputInstances, spew.Sdump(res.Graph.Classes()))
	assert.Equal(t, "8410.5", instance(t, res.Graph, "entity", "rave:par_lambda")["prov:value"].(json.Number).String())

	assert.Equal(t, g.Prefix, res.Graph.Prefix)
}

func TestConvertIsDeterministic(t *testing.T) {
	g, err := provgraph.LoadFile("../provgraph/testdata/voprov.json")
	require.NoError(t, err)

	c := New(nil, Options{})

	var first, second bytes.Buffer

	res, err := c.Convert(g)
	require.NoError(t, err)
	require.NoError(t, provgraph.Encode(&first, res.Graph))

	res, err = c.Convert(g)
	require.NoError(t, err)
	require.NoError(t, provgraph.Encode(&second, res.Graph))

	assert.Equal(t, first.String(), second.String())
}

func TestConvertDoesNotModifySource(t *testing.T) {
	g := decode(t, `{
		"parameter": {"p1": {"voprov:activity": "a", "voprov:description": "d"}},
		"parameterDescription": {"d": {"voprov:id": "d", "voprov:name": "n"}},
		"foo": {"x": {"k": "v"}}
	}`)

	var before bytes.Buffer
	require.NoError(t, provgraph.Encode(&before, g))

	_, err := New(nil, Options{}).Convert(g)
	require.NoError(t, err)

	var after bytes.Buffer
	require.NoError(t, provgraph.Encode(&after, g))

	assert.Equal(t, before.String(), after.String())
}

const collidingDoc = `{
	"entity": {"e1": {"voprov:id": "e1", "voprov:name": "plain"}},
	"collection": {"e1": {"voprov:id": "e1", "voprov:name": "grouped"}}
}`

func TestConvertCollisionOverwrite(t *testing.T) {
	res := convert(t, collidingDoc, Options{})

	inst := instance(t, res.Graph, "entity", "e1")
	assert.Equal(t, "grouped", inst["prov:label"])
	assert.Equal(t, "prov:collection", inst["prov:type"])

	warnings := res.Diagnostics.ByCode(CodeCollision)
	require.Len(t, warnings, 1)
	assert.Equal(t, "entity", warnings[0].Class)
	assert.Equal(t, "e1", warnings[0].Subject)
	assert.Equal(t, 1, res.Stats.Collisions)
}

func TestConvertCollisionKeepFirst(t *testing.T) {
	res := convert(t, collidingDoc, Options{Collision: CollisionKeepFirst})

	inst := instance(t, res.Graph, "entity", "e1")
	assert.Equal(t, "plain", inst["prov:label"])
	assert.NotContains(t, inst, "prov:type")
	assert.Len(t, res.Diagnostics.ByCode(CodeCollision), 1)
}

func TestConvertCollisionReject(t *testing.T) {
	_, err := New(nil, Options{Collision: CollisionReject}).Convert(decode(t, collidingDoc))
	require.Error(t, err)

	var collision *CollisionError
	require.True(t, errors.As(err, &collision), spew.Sdump(err))
	assert.Equal(t, "entity", collision.Class)
	assert.Equal(t, "e1", collision.ID)
	assert.Equal(t, "entity", collision.First)
	assert.Equal(t, "collection", collision.Second)
}

func TestConvertSynthesizedIDCollidesWithSourceRelation(t *testing.T) {
	doc := `{
		"used": {"_:p0": {"voprov:activity": "a", "voprov:entity": "e"}},
		"parameter": {"p1": {"voprov:activity": "a", "voprov:description": "d"}},
		"parameterDescription": {"d": {}}
	}`

	res := convert(t, doc, Options{Collision: CollisionKeepFirst})

	assert.Equal(t, "e", instance(t, res.Graph, "used", "_:p0")["prov:entity"])
	assert.Len(t, res.Diagnostics.ByCode(CodeCollision), 1)
}

func TestConvertSameClassDuplicateIsNotACollision(t *testing.T) {
	g := provgraph.New()
	g.Ensure("entity").Put("e1", provgraph.Instance{"voprov:name": "one"})

	res, err := New(nil, Options{Collision: CollisionReject}).Convert(g)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Collisions)
}

const dangling = `{
	"activity": {"a": {}},
	"parameter": {
		"p1": {"voprov:activity": "a", "voprov:description": "missing"},
		"p2": {"voprov:activity": "a", "voprov:description": "d"}
	},
	"parameterDescription": {"d": {"voprov:name": "n"}}
}`

func TestConvertMissingReferenceFails(t *testing.T) {
	_, err := New(nil, Options{}).Convert(decode(t, dangling))
	require.Error(t, err)

	var ref *ReferenceError
	require.True(t, errors.As(err, &ref), spew.Sdump(err))
	assert.Equal(t, "parameter", ref.Class)
	assert.Equal(t, "p1", ref.ID)
	assert.Equal(t, "missing", ref.Reference)
	assert.Contains(t, err.Error(), `parameter "p1": voprov:description references "missing", which is not in parameterDescription`)
}

func TestConvertFailureKeepsEarlierDiagnostics(t *testing.T) {
	doc := `{
		"foo": {"x": {}},
		"parameter": {"p1": {"voprov:description": "missing"}}
	}`

	res, err := New(nil, Options{}).Convert(decode(t, doc))
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Nil(t, res.Graph)
	assert.Len(t, res.Diagnostics.ByCode(CodeUnmappedClass), 1)
	assert.Equal(t, 1, res.Stats.UnmappedClasses)
}

func TestConvertMissingReferenceSkips(t *testing.T) {
	res := convert(t, dangling, Options{MissingReference: MissingReferenceSkip})

	p1 := instance(t, res.Graph, "entity", "p1")
	assert.NotContains(t, p1, "prov:label")
	assert.Equal(t, "n", instance(t, res.Graph, "entity", "p2")["prov:label"])

	used, _ := res.Graph.Bucket("used")
	assert.Equal(t, []string{"_:p0", "_:p1"}, used.IDs())

	warnings := res.Diagnostics.ByCode(CodeUnresolvedReference)
	require.Len(t, warnings, 1)
	assert.Equal(t, "p1", warnings[0].Subject)
	assert.Equal(t, 1, res.Stats.UnresolvedReferences)
	assert.Equal(t, 1, res.Stats.MergedInstances)
}

func TestConvertMissingReferenceAttribute(t *testing.T) {
	_, err := New(nil, Options{}).Convert(decode(t, `{"parameter": {"p1": {"voprov:activity": "a"}}}`))

	var ref *ReferenceError
	require.True(t, errors.As(err, &ref))
	assert.Empty(t, ref.Reference)
	assert.Equal(t, `parameter "p1" has no string voprov:description to look up in parameterDescription`, ref.Error())
}

func TestConvertMissingEndpoint(t *testing.T) {
	res := convert(t, `{
		"parameter": {"p1": {"voprov:description": "d"}},
		"parameterDescription": {"d": {}}
	}`, Options{})

	rel := instance(t, res.Graph, "used", "_:p0")
	assert.Equal(t, provgraph.Instance{"prov:entity": "p1", "prov:role": "voprov:parameter"}, rel)
	assert.Len(t, res.Diagnostics.ByCode(CodeMissingEndpoint), 1)
}

func TestConvertDescriptionOverwritesAttribute(t *testing.T) {
	res := convert(t, `{
		"parameter": {"p1": {"voprov:name": "mine", "voprov:activity": "a", "voprov:description": "d"}},
		"parameterDescription": {"d": {"voprov:name": "theirs"}}
	}`, Options{})

	assert.Equal(t, "theirs", instance(t, res.Graph, "entity", "p1")["prov:label"])
	assert.Len(t, res.Diagnostics.ByCode(CodeAttributeOverwritten), 1)
}

func TestConvertRenameClashWarns(t *testing.T) {
	res := convert(t, `{"agent": {"a1": {"prov:label": "new", "voprov:name": "old"}}}`, Options{})

	// Keys are applied in sorted order, so voprov:name is written last.
	assert.Equal(t, "old", instance(t, res.Graph, "agent", "a1")["prov:label"])
	assert.Len(t, res.Diagnostics.ByCode(CodeAttributeOverwritten), 1)
}

func TestConvertEmitsEmptyDestinationBucket(t *testing.T) {
	res := convert(t, `{"collection": {}}`, Options{})

	b, ok := res.Graph.Bucket("entity")
	require.True(t, ok)
	assert.Zero(t, b.Len())
}

func TestConvertWithCustomRegistry(t *testing.T) {
	mf, err := mapping.Parse([]byte(`
classes:
  step:
    target: activity
attributes:
  activity:
    x:name: prov:label
`))
	require.NoError(t, err)

	reg, err := mapping.NewRegistry(mf)
	require.NoError(t, err)

	g := decode(t, `{"step": {"s1": {"x:name": "fit"}}, "agent": {"a": {"voprov:name": "n"}}}`)

	res, err := New(reg, Options{}).Convert(g)
	require.NoError(t, err)

	assert.Equal(t, provgraph.Instance{"prov:label": "fit"}, instance(t, res.Graph, "activity", "s1"))
	// agent has no table in this registry.
	assert.Equal(t, provgraph.Instance{"voprov:name": "n"}, instance(t, res.Graph, "agent", "a"))
	assert.Len(t, res.Diagnostics.ByCode(CodeUnmappedClass), 1)
}

func TestConvertLogsPerClass(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	_, err := New(nil, Options{Logger: zap.New(core)}).Convert(decode(t, `{"collection": {"c": {}}}`))
	require.NoError(t, err)

	entries := logs.FilterMessage("converting class").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "collection", entries[0].ContextMap()["class"])
	assert.Equal(t, "entity", entries[0].ContextMap()["target"])
	assert.Equal(t, "Rename|AttributeRename", entries[0].ContextMap()["capabilities"])
}

func TestConvertCodeBuiltTableExcludesDescriptionID(t *testing.T) {
	reg, err := mapping.NewRegistry(&mapping.MappingFile{
		Classes: map[string]mapping.ClassRule{
			"parameter": {
				Target: "entity",
				Merge:  &mapping.MergeRule{From: "parameterDescription", Reference: "voprov:description"},
			},
		},
		Attributes: map[string]map[string]string{"entity": {"voprov:id": "prov:id"}},
	})
	require.NoError(t, err)

	g := decode(t, `{
		"parameter": {"p1": {"voprov:id": "p1", "voprov:description": "d1"}},
		"parameterDescription": {"d1": {"voprov:id": "d1", "voprov:unit": "m"}}
	}`)

	res, err := New(reg, Options{}).Convert(g)
	require.NoError(t, err)

	assert.Equal(t, provgraph.Instance{
		"prov:id":            "p1",
		"voprov:description": "d1",
		"voprov:unit":        "m",
	}, instance(t, res.Graph, "entity", "p1"))
	assert.Empty(t, res.Diagnostics.ByCode(CodeAttributeOverwritten))
}
