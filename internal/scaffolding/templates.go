package scaffolding

// FileTemplate is one file written by Init.
type FileTemplate struct {
	// Path is relative to the project root and uses forward slashes.
	Path    string
	Content string
}

// TemplateContext holds the values available to file templates.
type TemplateContext struct {
	ProjectName string
	Date        string
}

// GetBuiltinTemplates returns the files of a new project.
func GetBuiltinTemplates() []FileTemplate {
	return []FileTemplate{
		{Path: "src/main.c", Content: mainTemplate},
		{Path: ".gitignore", Content: gitignoreTemplate},
	}
}

const mainTemplate = `// Main entry point of {{.ProjectName}}.
// Add your modules to the 'source_files' array in coda.json and use 'extern' to call functions.

#include <stdio.h>

int main(void) {
    printf("Project initialized successfully by Coda.\n");
    return 0;
}
`

const gitignoreTemplate = `# Generated by coda init on {{.Date}}
/build/
/dist/
/modules/
`
