package curriculum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLGSMaxQuestions(t *testing.T) {
	c := LGS()

	for _, name := range []string{Turkish, Math, Science} {
		got, ok := c.MaxQuestions(name)
		require.True(t, ok, name)
		assert.Equal(t, 20, got, name)
	}
	for _, name := range []string{Social, Religion, English} {
		got, ok := c.MaxQuestions(name)
		require.True(t, ok, name)
		assert.Equal(t, 10, got, name)
	}

	_, ok := c.MaxQuestions("Felsefe")
	assert.False(t, ok)
}

func TestLGSOrderAndWeights(t *testing.T) {
	c := LGS()
	assert.Equal(t, []string{Turkish, Math, Science, Social, Religion, English}, c.Names())
	for _, s := range c.Subjects() {
		assert.Equal(t, 5.0, s.Weight)
		assert.NotEmpty(t, s.Key)
		assert.NotEmpty(t, s.Topics)
	}
}

func TestTopics(t *testing.T) {
	c := LGS()
	assert.True(t, c.HasTopic(Math, "Olasılık"))
	assert.False(t, c.HasTopic(Turkish, "Olasılık"))
	assert.Nil(t, c.Topics("unknown"))

	topics := c.Topics(English)
	topics[0] = "mutated"
	assert.Equal(t, "Friendship", c.Topics(English)[0])
}

func TestNewCatalogValidation(t *testing.T) {
	_, err := NewCatalog([]Subject{{Name: "A", Key: "a", MaxQuestions: 0, Weight: 1}})
	assert.Error(t, err)

	_, err = NewCatalog([]Subject{{Name: "A", Key: "a", MaxQuestions: 10, Weight: 0}})
	assert.Error(t, err)

	_, err = NewCatalog([]Subject{
		{Name: "A", Key: "a", MaxQuestions: 10, Weight: 1},
		{Name: "A", Key: "a", MaxQuestions: 10, Weight: 1},
	})
	assert.Error(t, err)

	_, err = NewCatalog([]Subject{{Name: "A", MaxQuestions: 10, Weight: 1}})
	assert.Error(t, err)

	_, err = NewCatalog([]Subject{
		{Name: "A", Key: "x", MaxQuestions: 10, Weight: 1},
		{Name: "B", Key: "x", MaxQuestions: 10, Weight: 1},
	})
	assert.Error(t, err)

	c, err := NewCatalog([]Subject{{Name: "A", Key: "a", MaxQuestions: 10, Weight: 2}})
	require.NoError(t, err)
	assert.Len(t, c.Meta(), 1)
}
