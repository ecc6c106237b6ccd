package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/policies"
	"rewin/internal/ports"
	"rewin/internal/shared"
	"rewin/internal/types"
)

const chocolateyInstallURL = "https://community.chocolatey.org/install.ps1"

type ScriptGenerator struct {
	Policy ports.BackendPolicyPort
}

func NewScriptGenerator() ScriptGenerator {
	return ScriptGenerator{Policy: policies.NewBackendPolicy()}
}

// Generate groups the package's software by backend. Identifiers keep
// package order and appear once; backends without identifiers are absent
// from the result.
func (g ScriptGenerator) Generate(pkg types.MigrationPackage) map[types.Backend]types.InstallScript {
	scripts := map[types.Backend]types.InstallScript{}
	seen := map[types.Backend]map[string]struct{}{}
	for _, entry := range pkg.Software {
		backend, ok := g.Policy.Backend(entry)
		if !ok {
			continue
		}
		id := policies.Identifier(entry, backend)
		if seen[backend] == nil {
			seen[backend] = map[string]struct{}{}
		}
		key := strings.ToLower(id)
		if _, dup := seen[backend][key]; dup {
			continue
		}
		seen[backend][key] = struct{}{}
		script := scripts[backend]
		script.Backend = backend
		script.Identifiers = append(script.Identifiers, id)
		scripts[backend] = script
	}
	return scripts
}

func (g ScriptGenerator) Render(script types.InstallScript) ([]byte, error) {
	if len(script.Identifiers) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("no identifiers for %s script", script.Backend))
	}
	switch script.Backend {
	case types.BackendWinget:
		return []byte(renderWinget(script.Identifiers)), nil
	case types.BackendChocolatey:
		return []byte(renderChocolatey(script.Identifiers)), nil
	default:
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported backend: %s", script.Backend))
	}
}

func renderWinget(ids []string) string {
	var b strings.Builder
	b.WriteString("# rewin - Winget installation script\n")
	b.WriteString("# Run this after Windows installation.\n\n")
	b.WriteString("if (-not (Get-Command winget -ErrorAction SilentlyContinue)) {\n")
	b.WriteString("    Write-Host \"winget is not available on this system\"\n")
	b.WriteString("    exit 1\n")
	b.WriteString("}\n\n")
	b.WriteString("Write-Host \"Installing software via Winget...\"\n\n")
	writePackageList(&b, ids)
	b.WriteString("$failed = @()\n")
	b.WriteString("foreach ($pkg in $packages) {\n")
	b.WriteString("    Write-Host \"Installing $pkg...\"\n")
	b.WriteString("    winget install --id $pkg --accept-source-agreements --accept-package-agreements -h\n")
	writeFailureCheck(&b)
	b.WriteString("}\n\n")
	writeSummary(&b, "Winget")
	return b.String()
}

func renderChocolatey(ids []string) string {
	var b strings.Builder
	b.WriteString("# rewin - Chocolatey installation script\n")
	b.WriteString("# Run this after Windows installation.\n\n")
	b.WriteString("if (-not (Get-Command choco -ErrorAction SilentlyContinue)) {\n")
	b.WriteString("    Write-Host \"Installing Chocolatey...\"\n")
	b.WriteString("    Set-ExecutionPolicy Bypass -Scope Process -Force\n")
	b.WriteString("    [System.Net.ServicePointManager]::SecurityProtocol = [System.Net.ServicePointManager]::SecurityProtocol -bor 3072\n")
	fmt.Fprintf(&b, "    iex ((New-Object System.Net.WebClient).DownloadString('%s'))\n", chocolateyInstallURL)
	b.WriteString("    $env:Path += \";$env:ALLUSERSPROFILE\\chocolatey\\bin\"\n")
	b.WriteString("}\n")
	b.WriteString("if (-not (Get-Command choco -ErrorAction SilentlyContinue)) {\n")
	b.WriteString("    Write-Host \"Chocolatey is not available on this system\"\n")
	b.WriteString("    exit 1\n")
	b.WriteString("}\n\n")
	b.WriteString("Write-Host \"Installing software via Chocolatey...\"\n\n")
	writePackageList(&b, ids)
	b.WriteString("$failed = @()\n")
	b.WriteString("foreach ($pkg in $packages) {\n")
	b.WriteString("    Write-Host \"Installing $pkg...\"\n")
	b.WriteString("    choco install $pkg -y\n")
	writeFailureCheck(&b)
	b.WriteString("}\n\n")
	writeSummary(&b, "Chocolatey")
	return b.String()
}

func writePackageList(b *strings.Builder, ids []string) {
	b.WriteString("$packages = @(\n")
	for idx, id := range ids {
		b.WriteString("    ")
		b.WriteString(shared.PSQuote(id))
		if idx < len(ids)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")\n\n")
}

func writeFailureCheck(b *strings.Builder) {
	b.WriteString("    if ($LASTEXITCODE -ne 0) {\n")
	b.WriteString("        Write-Host \"Failed to install $pkg (exit code $LASTEXITCODE)\"\n")
	b.WriteString("        $failed += $pkg\n")
	b.WriteString("    }\n")
}

func writeSummary(b *strings.Builder, label string) {
	fmt.Fprintf(b, "Write-Host \"%s installation complete. Failed: $($failed.Count)\"\n", label)
	b.WriteString("exit 0\n")
}
