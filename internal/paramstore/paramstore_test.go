package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	out     *ssm.GetParameterOutput
	err     error
	gotName string
	gotDec  bool
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.gotName = aws.ToString(in.Name)
	f.gotDec = aws.ToBool(in.WithDecryption)
	return f.out, f.err
}

func paramOut(v string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(v)}}
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{out: paramOut("secret")}
	c, err := New(api)
	require.NoError(t, err)

	v, err := c.GetParameter(context.Background(), " /gforma/llm-key ")
	require.NoError(t, err)
	require.Equal(t, "secret", v)
	require.Equal(t, "/gforma/llm-key", api.gotName)
	require.True(t, api.gotDec)
}

func TestGetParameter_Errors(t *testing.T) {
	c, err := New(&fakeAPI{err: errors.New("boom")})
	require.NoError(t, err)
	_, err = c.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")

	_, err = c.GetParameter(context.Background(), " ")
	require.Error(t, err)

	c, err = New(&fakeAPI{out: &ssm.GetParameterOutput{}})
	require.NoError(t, err)
	_, err = c.GetParameter(context.Background(), "p")
	require.Error(t, err)
}

type staticGetter struct {
	val string
	err error
}

func (g staticGetter) GetParameter(context.Context, string) (string, error) {
	return g.val, g.err
}

func TestResolveAPIKey(t *testing.T) {
	cases := []struct {
		name    string
		getter  staticGetter
		want    string
		wantErr bool
	}{
		{name: "bare", getter: staticGetter{val: " key-123\n"}, want: "key-123"},
		{name: "json", getter: staticGetter{val: `{"token":"key-456"}`}, want: "key-456"},
		{name: "json empty token", getter: staticGetter{val: `{"token":""}`}, wantErr: true},
		{name: "bad json", getter: staticGetter{val: `{"token":`}, wantErr: true},
		{name: "empty", getter: staticGetter{val: "  "}, wantErr: true},
		{name: "getter error", getter: staticGetter{err: errors.New("denied")}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveAPIKey(context.Background(), tc.getter, "p")
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
