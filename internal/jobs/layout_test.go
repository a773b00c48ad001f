package jobs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fatjet-analysis/condorctl/internal/catalog"
)

func TestLayout(t *testing.T) {
	l := Layout{
		BaseDir:      "condor_jobs/tuplizer",
		Timestamp:    "161129_000557",
		Suffix:       Suffix(400),
		OutputPrefix: "tuple",
		RemoteRoot:   "/store/user/tote",
	}
	d := &catalog.Dataset{Subprocess: "qcdp470", Generation: "spring16"}

	assert.Equal(t, filepath.Join("condor_jobs", "tuplizer", "161129_000557", "qcdp470_spring16_cutpt400"), l.JobDir(d))
	assert.Equal(t, filepath.Join(l.JobDir(d), "logs"), l.LogDir(d))
	assert.Equal(t, "tuple_qcdp470_spring16_cutpt400_7.root", l.OutputFile(d, 7))
	assert.Equal(t, "/store/user/tote/qcdp/tuple_qcdp470_spring16_cutpt400/161129_000557", l.RemotePath("qcdp", d))
	assert.Equal(t, "job_3.sh", ScriptName(3))
	assert.Equal(t, "job_3.jdl", JDLName(3))
	assert.Equal(t, "logs/job_3.stderr", LogFile(3, "stderr"))
}

func TestQuoting(t *testing.T) {
	tests := map[string]struct {
		got      string
		expected string
	}{
		"plain value":          {got: keyValue("generation", "spring16"), expected: `generation="spring16"`},
		"shell metacharacters": {got: keyValue("mask", "a\"b$c`d\\e"), expected: `mask="a\"b\$c\` + "`" + `d\\e"`},
		"several values":       {got: keyValues("inFile", []string{"/a.root", "/b c.root"}), expected: `inFile="/a.root","/b c.root"`},
		"safe word":            {got: word("tuple_1.root"), expected: "tuple_1.root"},
		"unsafe word":          {got: word("my file.root"), expected: "'my file.root'"},
		"command":              {got: command("rm", "my file.root"), expected: "rm 'my file.root'"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.got)
		})
	}
}

func TestChain_Shell(t *testing.T) {
	assert.Equal(t, "a &&\nb &&\nc", Chain{"a", "b", "c"}.Shell())
	assert.Equal(t, "a", Chain{"a"}.Shell())
}
