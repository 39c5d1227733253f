/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template for the validation report. Renders the dataset
description, the summary table and one confusion grid per antibiotic facet,
colored by essential agreement.
*/

package reporting

// reportTemplate is the main HTML template for the report
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: #f4f5f9;
            color: #333;
        }

        .container {
            max-width: 1400px;
            margin: 0 auto;
            padding: 20px;
        }

        .header {
            background: #fff;
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 24px;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
        }

        .header h1 {
            color: #4a5568;
            font-size: 2rem;
            margin-bottom: 8px;
        }

        .header .meta {
            color: #718096;
            font-size: 0.9rem;
        }

        .description {
            margin-top: 12px;
            font-family: monospace;
            white-space: pre-wrap;
        }

        .card {
            background: #fff;
            border-radius: 12px;
            padding: 24px;
            margin-bottom: 24px;
            box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
        }

        .card h2 {
            color: #4a5568;
            margin-bottom: 16px;
        }

        table {
            border-collapse: collapse;
        }

        th, td {
            padding: 4px 8px;
            border: 1px solid #e2e8f0;
            text-align: center;
            font-size: 0.85rem;
        }

        tr.overall {
            font-weight: 700;
        }

        .facets {
            display: grid;
            gap: 16px;
        }

        .facet h3 {
            margin-bottom: 8px;
            color: #4a5568;
        }

        td.ea-agree {
            background: #c6f6d5;
        }

        td.ea-disagree {
            background: #fed7d7;
        }

        td.ea-na {
            background: #e2e8f0;
        }

        td.empty {
            background: #fff;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <p class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}{{if .RunID}} &middot; run {{.RunID}}{{end}}</p>
            <p class="description">{{.Description}}</p>
        </div>

        {{if .Summary}}
        <div class="card">
            <h2>Summary</h2>
            <table id="summary">
                <thead>
                    <tr>
                        <th>antibiotic</th>
                        <th>organism</th>
                        <th>n</th>
                        <th>EA</th>
                        <th>bias</th>
                        {{if .Summary.Categorical}}
                        <th>CA</th>
                        <th>minor</th>
                        <th>major</th>
                        <th>very major</th>
                        {{end}}
                    </tr>
                </thead>
                <tbody>
                    {{range .Summary.Rows}}
                    <tr class="{{if .Overall}}overall{{else}}group{{end}}">
                        <td>{{if .Overall}}Overall{{else}}{{.Antibiotic}}{{end}}</td>
                        <td>{{.Organism}}</td>
                        <td>{{.N}}</td>
                        <td class="ea-rate">{{percent .EARate}}</td>
                        <td>{{decimal .Bias}}</td>
                        {{if $.Summary.Categorical}}
                        <td>{{percent .CARate}}</td>
                        <td>{{percent .MinorRate}}</td>
                        <td>{{percent .MajorRate}}</td>
                        <td>{{percent .VeryMajorRate}}</td>
                        {{end}}
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{if .Plot}}
        <div class="card">
            <h2>Agreement</h2>
            <div class="facets" style="grid-template-columns: repeat({{.Plot.Ncol}}, 1fr)">
                {{range $f := .Plot.Facets}}
                <div class="facet" data-antibiotic="{{$f.Antibiotic}}">
                    <h3>{{if $f.Antibiotic}}{{$f.Antibiotic}}{{else}}All observations{{end}} (n={{$f.Total}})</h3>
                    <table class="grid">
                        <thead>
                            <tr>
                                <th>gold \ test</th>
                                {{range $f.TestLevels}}<th class="test-level">{{.}}</th>{{end}}
                            </tr>
                        </thead>
                        <tbody>
                            {{range $i, $row := $f.Cells}}
                            <tr>
                                <th class="gold-level">{{index $f.GoldLevels $i}}</th>
                                {{range $row}}<td class="{{.Class}}" title="{{.Gold}} / {{.Test}}">{{if .Count}}{{.Count}}{{end}}</td>{{end}}
                            </tr>
                            {{end}}
                        </tbody>
                    </table>
                </div>
                {{end}}
            </div>
        </div>
        {{end}}
    </div>
</body>
</html>`
