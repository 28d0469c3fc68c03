package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=3,p=2$"))

	assert.True(t, Verify("s3cret-pass", encoded))
	assert.False(t, Verify("S3cret-pass", encoded))
	assert.False(t, NeedsRehash(encoded))

	again, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, again)
}

func TestOlderParamsVerifyAndNeedRehash(t *testing.T) {
	cheap := Params{Memory: 8 * 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}
	encoded, err := cheap.Hash("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, Verify("s3cret-pass", encoded))
	assert.True(t, NeedsRehash(encoded))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$AA$AA",
		"$argon2id$v=18$m=1,t=1,p=1$AA$AA",
		"$argon2id$v=19$m=x,t=1,p=1$AA$AA",
		"$argon2id$v=19$m=1,t=1$AA$AA",
		"$argon2id$v=19$m=0,t=1,p=1$AA$AA",
		"$argon2id$v=19$m=1,t=1,p=1$!!$AA",
	} {
		assert.False(t, Verify("pw", encoded), encoded)
		assert.True(t, NeedsRehash(encoded), encoded)
	}
}
